package gamification

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) ListAchievements(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}

	views, stats, err := h.Svc.List(c.UserContext(), scope)
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"achievements": views, "stats": stats})
}

func (h *Handler) Check(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}

	unlocked, err := h.Svc.Check(c.UserContext(), scope)
	if err != nil {
		return err
	}

	msg := "No new achievements for now"
	if len(unlocked) > 0 {
		msg = "New achievements unlocked!"
	}
	return api.OK(c, fiber.Map{"unlocked": unlocked, "count": len(unlocked), "message": msg})
}
