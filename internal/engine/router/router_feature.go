package router

import (
	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/go-arcade/qaboard/internal/engine/service"
	"github.com/go-arcade/qaboard/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

type featureReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type stepReq struct {
	Description string `json:"description"`
}

type verifyReq struct {
	Status model.Status `json:"status"`
}

type commentReq struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

type positionReq struct {
	To int `json:"to"`
}

func (rt *Router) featureRouter(r fiber.Router) {
	features := r.Group("/teams/:teamId/features")
	{
		features.Get("/", rt.searchFeatures) // ?q= 按名称、描述、步骤和评论搜索
		features.Post("/", rt.addFeature)
		features.Post("/reorder", rt.reorderFeatures)
		features.Put("/:featureId", rt.updateFeature)
		features.Delete("/:featureId", rt.deleteFeature)
		features.Post("/:featureId/move", rt.moveFeature)
		features.Post("/:featureId/reset", rt.resetFeature)

		// 步骤
		features.Post("/:featureId/steps", rt.addStep)
		features.Post("/:featureId/steps/reorder", rt.reorderSteps)
		features.Put("/:featureId/steps/:stepId", rt.updateStep)
		features.Delete("/:featureId/steps/:stepId", rt.removeStep)
		features.Post("/:featureId/steps/:stepId/move", rt.moveStep)
		features.Post("/:featureId/steps/:stepId/verify", rt.verifyStep)

		// 附件
		features.Post("/:featureId/steps/:stepId/media", rt.uploadMedia)
		features.Post("/:featureId/steps/:stepId/media/attach", rt.attachMedia)
		features.Delete("/:featureId/steps/:stepId/media/:mediaId", rt.detachMedia)

		// 评论
		features.Post("/:featureId/comments", rt.addComment)
		features.Put("/:featureId/comments/:commentId", rt.updateComment)
		features.Delete("/:featureId/comments/:commentId", rt.deleteComment)
	}
}

func (rt *Router) searchFeatures(c *fiber.Ctx) error {
	teamId, err := paramId(c, "teamId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	features, err := rt.Board.SearchFeatures(teamId, c.Query("q"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, features)
	return nil
}

func (rt *Router) addFeature(c *fiber.Ctx) error {
	teamId, err := paramId(c, "teamId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req featureReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	f, err := rt.Board.AddFeature(teamId, req.Name, req.Description)
	if err != nil {
		return fail(c, err)
	}
	c.Status(fiber.StatusCreated)
	c.Locals(middleware.DETAIL, f)
	return nil
}

func (rt *Router) updateFeature(c *fiber.Ctx) error {
	ids, err := paramIds(c, "teamId", "featureId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req featureReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	f, err := rt.Board.UpdateFeature(ids[0], ids[1], req.Name, req.Description)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, f)
	return nil
}

func (rt *Router) deleteFeature(c *fiber.Ctx) error {
	ids, err := paramIds(c, "teamId", "featureId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	team, err := rt.Board.DeleteFeature(ids[0], ids[1])
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, team)
	return nil
}

func (rt *Router) reorderFeatures(c *fiber.Ctx) error {
	teamId, err := paramId(c, "teamId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req moveReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	team, err := rt.Board.ReorderFeatures(teamId, req.From, req.To)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, team)
	return nil
}

func (rt *Router) moveFeature(c *fiber.Ctx) error {
	ids, err := paramIds(c, "teamId", "featureId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req positionReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	team, err := rt.Board.MoveFeature(ids[0], ids[1], req.To)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, team)
	return nil
}

func (rt *Router) resetFeature(c *fiber.Ctx) error {
	ids, err := paramIds(c, "teamId", "featureId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	res, err := rt.Board.ResetFeature(c.UserContext(), ids[0], ids[1])
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, res)
	return nil
}

func (rt *Router) addStep(c *fiber.Ctx) error {
	ids, err := paramIds(c, "teamId", "featureId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req stepReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	f, err := rt.Board.AddStep(ids[0], ids[1], req.Description)
	if err != nil {
		return fail(c, err)
	}
	c.Status(fiber.StatusCreated)
	c.Locals(middleware.DETAIL, f)
	return nil
}

func (rt *Router) updateStep(c *fiber.Ctx) error {
	ids, err := paramIds(c, "teamId", "featureId", "stepId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req stepReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	f, err := rt.Board.UpdateStep(ids[0], ids[1], ids[2], req.Description)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, f)
	return nil
}

func (rt *Router) removeStep(c *fiber.Ctx) error {
	ids, err := paramIds(c, "teamId", "featureId", "stepId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	f, err := rt.Board.RemoveStep(ids[0], ids[1], ids[2])
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, f)
	return nil
}

func (rt *Router) reorderSteps(c *fiber.Ctx) error {
	ids, err := paramIds(c, "teamId", "featureId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req moveReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	f, err := rt.Board.ReorderSteps(ids[0], ids[1], req.From, req.To)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, f)
	return nil
}

func (rt *Router) moveStep(c *fiber.Ctx) error {
	ids, err := paramIds(c, "teamId", "featureId", "stepId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req positionReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	f, err := rt.Board.MoveStep(ids[0], ids[1], ids[2], req.To)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, f)
	return nil
}

func (rt *Router) verifyStep(c *fiber.Ctx) error {
	ids, err := paramIds(c, "teamId", "featureId", "stepId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req verifyReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	f, err := rt.Board.VerifyStep(ids[0], ids[1], ids[2], req.Status)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, f)
	return nil
}

// uploadMedia multipart 表单字段 file
func (rt *Router) uploadMedia(c *fiber.Ctx) error {
	ids, err := paramIds(c, "teamId", "featureId", "stepId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "file is required")
	}
	file, err := fh.Open()
	if err != nil {
		return fail(c, err)
	}
	defer file.Close()

	m, err := rt.Board.UploadMedia(c.UserContext(), ids[0], ids[1], ids[2], service.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        file,
	})
	if err != nil {
		return fail(c, err)
	}
	c.Status(fiber.StatusCreated)
	c.Locals(middleware.DETAIL, m)
	return nil
}

func (rt *Router) attachMedia(c *fiber.Ctx) error {
	ids, err := paramIds(c, "teamId", "featureId", "stepId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var m model.StepMedia
	if err := c.BodyParser(&m); err != nil {
		return badRequest(c, err.Error())
	}
	f, err := rt.Board.AttachMedia(ids[0], ids[1], ids[2], m)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, f)
	return nil
}

func (rt *Router) detachMedia(c *fiber.Ctx) error {
	ids, err := paramIds(c, "teamId", "featureId", "stepId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	f, err := rt.Board.DetachMedia(c.UserContext(), ids[0], ids[1], ids[2], c.Params("mediaId"))
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, f)
	return nil
}

func (rt *Router) addComment(c *fiber.Ctx) error {
	ids, err := paramIds(c, "teamId", "featureId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req commentReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	f, err := rt.Board.AddComment(ids[0], ids[1], req.Text, req.Author)
	if err != nil {
		return fail(c, err)
	}
	c.Status(fiber.StatusCreated)
	c.Locals(middleware.DETAIL, f)
	return nil
}

func (rt *Router) updateComment(c *fiber.Ctx) error {
	ids, err := paramIds(c, "teamId", "featureId", "commentId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var req commentReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err.Error())
	}
	f, err := rt.Board.UpdateComment(ids[0], ids[1], ids[2], req.Text)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, f)
	return nil
}

func (rt *Router) deleteComment(c *fiber.Ctx) error {
	ids, err := paramIds(c, "teamId", "featureId", "commentId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	f, err := rt.Board.DeleteComment(ids[0], ids[1], ids[2])
	if err != nil {
		return fail(c, err)
	}
	c.Locals(middleware.DETAIL, f)
	return nil
}
