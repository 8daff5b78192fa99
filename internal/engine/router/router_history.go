package router

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-arcade/qaboard/internal/engine/history"
	"github.com/go-arcade/qaboard/internal/engine/model"
	"github.com/go-arcade/qaboard/pkg/http/middleware"
	"github.com/gofiber/fiber/v2"
)

var errNoHistory = errors.New("no verifications for team in range")

func (rt *Router) historyRouter(r fiber.Router) {
	verifications := r.Group("/verifications")
	{
		verifications.Get("/", rt.listVerifications)
		verifications.Get("/stats", rt.verificationStats)
		verifications.Get("/dates", rt.verificationDates)
		verifications.Get("/pending", rt.pendingSteps)
	}

	h := r.Group("/history")
	{
		h.Get("/reconstruct", rt.reconstruct)
		h.Get("/teams", rt.historyTeams)
		h.Get("/latest", rt.latestTeams)
	}
}

// parseDay 支持 2006-01-02（按配置时区）、RFC3339 和毫秒时间戳
func parseDay(v string, loc *time.Location) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, v, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.In(loc), nil
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.UnixMilli(ms).In(loc), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", v)
}

func (rt *Router) dateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	loc := rt.History.Location
	if loc == nil {
		loc = time.Local
	}
	start, err := parseDay(c.Query("start"), loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDay(c.Query("end"), loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.IsZero() {
		end = start
	}
	return start, end, nil
}

func (rt *Router) listVerifications(c *fiber.Ctx) error {
	start, end, err := rt.dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	status := model.Status(c.Query("status"))
	if status != "" && !status.Valid() {
		return badRequest(c, "invalid status")
	}
	q := history.Query{
		TeamId: int64(c.QueryInt("teamId")),
		Start:  start,
		End:    end,
		Search: c.Query("q"),
		Status: status,
	}
	c.Locals(middleware.DETAIL, history.Filter(rt.Engine.Verifications(), q, rt.History))
	return nil
}

func (rt *Router) verificationStats(c *fiber.Ctx) error {
	c.Locals(middleware.DETAIL, history.ComputeStats(rt.Engine.Verifications()))
	return nil
}

func (rt *Router) verificationDates(c *fiber.Ctx) error {
	days := history.AvailableDates(rt.Engine.Verifications(), rt.History)
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Format(time.DateOnly)
	}
	c.Locals(middleware.DETAIL, out)
	return nil
}

func (rt *Router) pendingSteps(c *fiber.Ctx) error {
	start, end, err := rt.dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if start.IsZero() {
		return badRequest(c, "start is required")
	}
	pending := history.HasPendingSteps(rt.Engine.Verifications(), start, end, rt.History)
	c.Locals(middleware.DETAIL, fiber.Map{"pending": pending})
	return nil
}

func (rt *Router) reconstruct(c *fiber.Ctx) error {
	teamId, err := strconv.ParseInt(c.Query("teamId"), 10, 64)
	if err != nil {
		return badRequest(c, "teamId must be an integer")
	}
	start, end, err := rt.dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if start.IsZero() {
		return badRequest(c, "start is required")
	}

	team, ok := history.Reconstruct(rt.Engine.Verifications(), teamId, c.Query("teamName"), start, end, rt.History)
	if !ok {
		return fail(c, errNoHistory)
	}
	c.Locals(middleware.DETAIL, team)
	return nil
}

func (rt *Router) historyTeams(c *fiber.Ctx) error {
	start, end, err := rt.dateRange(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	c.Locals(middleware.DETAIL, history.TeamOptions(rt.Engine.Verifications(), start, end, rt.History))
	return nil
}

func (rt *Router) latestTeams(c *fiber.Ctx) error {
	c.Locals(middleware.DETAIL, history.LatestTeams(rt.Engine.Verifications(), c.QueryInt("n", 2)))
	return nil
}
