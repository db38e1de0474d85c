package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/gmsas95/finbot/internal/agent"
	"github.com/gmsas95/finbot/internal/cron"
	"github.com/gmsas95/finbot/internal/dates"
	apperrors "github.com/gmsas95/finbot/internal/errors"
)

func (s *Server) handleHealth(c *fiber.Ctx) error {
	status := "healthy"
	code := fiber.StatusOK
	jobs := fiber.Map{}
	if s.store != nil {
		if err := s.store.Ping(c.UserContext()); err != nil {
			s.logger.Warn("Health check failed", zap.Error(err))
			status = "degraded"
			code = fiber.StatusServiceUnavailable
		}
		for _, job := range []string{cron.JobBadgerGC, cron.JobDeadlineSweep} {
			if last, err := s.store.GetKV(cron.LastRunKey(job)); err == nil {
				jobs[job] = string(last)
			}
		}
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    status,
		"version":   version,
		"timestamp": time.Now().Unix(),
		"metrics":   s.metrics.Snapshot(),
		"jobs":      jobs,
	})
}

func (s *Server) handleMessage(c *fiber.Ctx) error {
	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "invalid request", Code: apperrors.ErrBadRequest.Code})
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" || strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "user_id and text are required", Code: apperrors.ErrBadRequest.Code})
	}
	if !canActAs(c, req.UserID) {
		return c.Status(fiber.StatusForbidden).JSON(errorResponse{Error: "forbidden", Code: apperrors.ErrUnauthorized.Code})
	}

	res, err := s.agent.Handle(c.UserContext(), agent.Request{
		Owner:    req.UserID,
		Text:     req.Text,
		Now:      time.Now().In(s.config.Location()),
		Channel:  "api",
		Category: req.Category,
	})
	if err != nil {
		return s.internalError(c, "Failed to handle message", err)
	}

	resp := messageResponse{Reply: res.Reply, Matched: res.Matched, Handler: res.Handler}
	if res.Rejected != nil {
		resp.ErrorCode = apperrors.GetCode(res.Rejected)
	}
	return c.JSON(resp)
}

func (s *Server) handleListGoals(c *fiber.Ctx) error {
	owner := c.Params("id")
	if !canActAs(c, owner) {
		return c.Status(fiber.StatusForbidden).JSON(errorResponse{Error: "forbidden", Code: apperrors.ErrUnauthorized.Code})
	}

	goals, err := s.agent.Goals().List(c.UserContext(), owner)
	if err != nil {
		return s.internalError(c, "Failed to list goals", err)
	}
	return c.JSON(goals)
}

// handleSummary reports the current month unless from/to (DD/MM/YYYY) are given
func (s *Server) handleSummary(c *fiber.Ctx) error {
	owner := c.Params("id")
	if !canActAs(c, owner) {
		return c.Status(fiber.StatusForbidden).JSON(errorResponse{Error: "forbidden", Code: apperrors.ErrUnauthorized.Code})
	}

	loc := s.config.Location()
	from, to := agent.MonthRange(time.Now().In(loc))

	if raw := c.Query("from"); raw != "" {
		t, err := dates.ParseDeadline(raw, loc)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "from must be DD/MM/YYYY", Code: apperrors.ErrBadRequest.Code})
		}
		from = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := dates.ParseDeadline(raw, loc)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "to must be DD/MM/YYYY", Code: apperrors.ErrBadRequest.Code})
		}
		to = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}

	report, err := s.agent.Summary(c.UserContext(), owner, from, to)
	if err != nil {
		return s.internalError(c, "Failed to build summary", err)
	}
	return c.JSON(report)
}

func (s *Server) internalError(c *fiber.Ctx, msg string, err error) error {
	s.logger.Error(msg, zap.Error(err))
	if apperrors.GetCode(err) == apperrors.ErrLedgerUnavailable.Code {
		return c.Status(fiber.StatusServiceUnavailable).JSON(errorResponse{Error: "ledger unavailable", Code: apperrors.ErrLedgerUnavailable.Code})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{Error: "internal error", Code: apperrors.ErrInternal.Code})
}
