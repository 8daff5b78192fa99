package router

import (
	"github.com/go-arcade/qaboard/internal/engine/service"
	"github.com/go-arcade/qaboard/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

/**
 * @author: gagral.x@gmail.com
 * @time: 2025/10/22
 * @file: router_team.go
 * @description: Team 路由
 */

type teamReq struct {
	Name string `json:"name"`
}

type moveReq struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (rt *Router) teamRouter(r fiber.Router) {
	teamGroup := r.Group("/teams")
	{
		teamGroup.Get("/", rt.listTeams)
		teamGroup.Post("/", rt.createTeam)
		teamGroup.Post("/reorder", rt.reorderTeams)
		teamGroup.Post("/import", rt.importTeam)

		// 回收站
		teamGroup.Get("/trash", rt.listTrash)
		teamGroup.Delete("/trash", rt.emptyTrash)
		teamGroup.Post("/trash/:teamId/restore", rt.restoreTeam)

		teamGroup.Get("/:teamId", rt.getTeam)
		teamGroup.Put("/:teamId", rt.renameTeam)
		teamGroup.Delete("/:teamId", rt.deleteTeam)
		teamGroup.Post("/:teamId/pin", rt.togglePin)
		teamGroup.Post("/:teamId/duplicate", rt.duplicateTeam)
		teamGroup.Get("/:teamId/export", rt.exportTeam)
		teamGroup.Post("/:teamId/reset", rt.resetTeam)
	}
}

func (rt *Router) listTeams(c *fiber.Ctx) error {
	c.Locals(middleware.DETAIL, rt.Board.Teams())
	return nil
}

func (rt *Router) createTeam(c *fiber.Ctx) error {
	var req teamReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	team, err := rt.Board.AddTeam(req.Name)
	if err != nil {
		return fail(c, err)
	}
	c.Status(fiber.StatusCreated)
	c.Locals(middleware.DETAIL, team)
	return nil
}

func (rt *Router) getTeam(c *fiber.Ctx) error {
	teamId, err := paramId(c, "teamId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	team, err := rt.Board.Team(teamId)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, team)
	return nil
}

func (rt *Router) renameTeam(c *fiber.Ctx) error {
	teamId, err := paramId(c, "teamId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req teamReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	team, err := rt.Board.RenameTeam(teamId, req.Name)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, team)
	return nil
}

func (rt *Router) deleteTeam(c *fiber.Ctx) error {
	teamId, err := paramId(c, "teamId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := rt.Board.DeleteTeam(teamId); err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.OPERATION, "delete team")
	return nil
}

func (rt *Router) togglePin(c *fiber.Ctx) error {
	teamId, err := paramId(c, "teamId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	team, err := rt.Board.TogglePin(teamId)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, team)
	return nil
}

// duplicateTeam ?withData=false 生成空白副本
func (rt *Router) duplicateTeam(c *fiber.Ctx) error {
	teamId, err := paramId(c, "teamId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	team, err := rt.Board.DuplicateTeam(teamId, c.QueryBool("withData", true))
	if err != nil {
		return fail(c, err)
	}
	c.Status(fiber.StatusCreated)
	c.Locals(middleware.DETAIL, team)
	return nil
}

func (rt *Router) reorderTeams(c *fiber.Ctx) error {
	var req moveReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	teams, err := rt.Board.ReorderTeams(req.From, req.To)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, teams)
	return nil
}

func (rt *Router) listTrash(c *fiber.Ctx) error {
	c.Locals(middleware.DETAIL, rt.Board.Trash())
	return nil
}

func (rt *Router) emptyTrash(c *fiber.Ctx) error {
	c.Locals(middleware.DETAIL, fiber.Map{"removed": rt.Board.EmptyTrash()})
	return nil
}

func (rt *Router) restoreTeam(c *fiber.Ctx) error {
	teamId, err := paramId(c, "teamId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	team, err := rt.Board.RestoreTeam(teamId)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, team)
	return nil
}

func (rt *Router) exportTeam(c *fiber.Ctx) error {
	teamId, err := paramId(c, "teamId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	data, err := rt.Board.ExportTeam(teamId)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, data)
	return nil
}

func (rt *Router) importTeam(c *fiber.Ctx) error {
	var data service.TeamExport
	if err := c.BodyParser(&data); err != nil {
		return badRequest(c, err.Error())
	}
	team, err := rt.Board.ImportTeam(data)
	if err != nil {
		return fail(c, err)
	}
	c.Status(fiber.StatusCreated)
	c.Locals(middleware.DETAIL, team)
	return nil
}

func (rt *Router) resetTeam(c *fiber.Ctx) error {
	teamId, err := paramId(c, "teamId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	res, err := rt.Board.ResetTeam(c.UserContext(), teamId)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, res)
	return nil
}
