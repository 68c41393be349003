package savings

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/progress"
)

type Handler struct {
	Store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) List(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}
	goals, err := h.Store.List(c.UserContext(), scope)
	if err != nil {
		return err
	}

	views := make([]View, 0, len(goals))
	for _, g := range goals {
		views = append(views, ViewOf(g))
	}
	return api.OK(c, fiber.Map{"goals": views})
}

func (h *Handler) Create(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}

	var req CreateRequest
	if err := api.BindJSON(c, &req); err != nil {
		return err
	}
	req.Name = strings.TrimSpace(req.Name)

	v := &api.Validator{}
	v.Check(req.Name != "", "name", "name is required")
	v.MaxLen(&req.Name, "name", 100)
	v.Check(req.TargetAmount.IsPositive(), "targetAmount", "must be greater than 0")
	if err := v.Err(); err != nil {
		return err
	}

	g, err := h.Store.Create(c.UserContext(), scope, req)
	if err != nil {
		return err
	}
	return api.Created(c, fiber.Map{"goal": ViewOf(g)})
}

// Contribute handles PATCH /savings-goals with {goalId, addAmount}.
func (h *Handler) Contribute(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}

	var req ContributeRequest
	if err := api.BindJSON(c, &req); err != nil {
		return err
	}

	v := &api.Validator{}
	v.Check(req.GoalID > 0, "goalId", "must be a positive integer")
	_, cErr := progress.Contribute(decimal.Zero, req.AddAmount)
	v.Check(cErr == nil, "addAmount", "must be greater than 0")
	if err := v.Err(); err != nil {
		return err
	}

	g, err := h.Store.Contribute(c.UserContext(), scope, req.GoalID, req.AddAmount)
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"goal": ViewOf(g)})
}

func (h *Handler) Update(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}
	id, err := api.ParamID(c)
	if err != nil {
		return err
	}

	var p Patch
	if err := api.BindJSON(c, &p); err != nil {
		return err
	}
	if p.Name != nil {
		trimmed := strings.TrimSpace(*p.Name)
		p.Name = &trimmed
	}

	v := &api.Validator{}
	v.Check(!p.empty(), "body", "at least one field must be provided")
	v.Check(p.Name == nil || *p.Name != "", "name", "name is required")
	v.MaxLen(p.Name, "name", 100)
	v.Check(p.TargetAmount == nil || p.TargetAmount.IsPositive(), "targetAmount", "must be greater than 0")
	if err := v.Err(); err != nil {
		return err
	}

	g, err := h.Store.Update(c.UserContext(), scope, id, p)
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"goal": ViewOf(g)})
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}
	id, err := api.ParamID(c)
	if err != nil {
		return err
	}
	if err := h.Store.Delete(c.UserContext(), scope, id); err != nil {
		return err
	}
	return api.OK(c, fiber.Map{})
}
