package subscription

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/schedule"
)

type Handler struct {
	Store Store
	Now   func() time.Time
}

func NewHandler(store Store) *Handler {
	return &Handler{Store: store, Now: time.Now}
}

func (h *Handler) List(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}
	active, err := api.QueryBool(c, "active")
	if err != nil {
		return err
	}
	subs, err := h.Store.List(c.UserContext(), scope, active)
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"data": subs})
}

func validateText(v *api.Validator, merchant, description *string) {
	v.MaxLen(merchant, "merchant", 200)
	v.MaxLen(description, "description", 500)
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

	n := New{
		Amount:      req.Amount,
		Merchant:    api.TrimPtr(req.Merchant),
		Description: api.TrimPtr(req.Description),
		CategoryID:  req.CategoryID,
		EveryN:      1,
		StartDate:   h.Now(),
		Active:      true,
	}
	if req.EveryN != nil {
		n.EveryN = *req.EveryN
	}
	if req.StartDate != nil {
		n.StartDate = *req.StartDate
	}
	if req.Active != nil {
		n.Active = *req.Active
	}
	unit, unitErr := schedule.ParseUnit(req.Unit)
	n.Unit = unit

	v := &api.Validator{}
	v.Check(n.Amount.IsPositive(), "amount", "amount must be greater than 0")
	v.Check(n.EveryN > 0, "everyN", "must be a positive integer")
	v.Check(unitErr == nil, "unit", schedule.ErrInvalidUnit.Error())
	v.Check(n.CategoryID == nil || *n.CategoryID > 0, "categoryId", "must be a positive integer")
	validateText(v, n.Merchant, n.Description)
	if err := v.Err(); err != nil {
		return err
	}

	n.NextChargeAt = schedule.Next(n.StartDate, n.EveryN, n.Unit)

	s, err := h.Store.Create(c.UserContext(), scope, n)
	if err != nil {
		return err
	}
	return api.Created(c, fiber.Map{"data": s})
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

	v := &api.Validator{}
	v.Check(!p.empty(), "body", "at least one field must be provided")
	v.Check(p.Amount == nil || p.Amount.IsPositive(), "amount", "amount must be greater than 0")
	v.Check(p.EveryN == nil || *p.EveryN > 0, "everyN", "must be a positive integer")
	if p.Unit != nil {
		_, err := schedule.ParseUnit(*p.Unit)
		v.Check(err == nil, "unit", schedule.ErrInvalidUnit.Error())
	}
	v.Check(p.CategoryID.Ptr() == nil || *p.CategoryID.Ptr() > 0, "categoryId", "must be a positive integer")
	validateText(v, p.Merchant.Ptr(), p.Description.Ptr())
	if err := v.Err(); err != nil {
		return err
	}

	ctx := c.UserContext()
	var next *Schedule
	if p.reschedules() || p.NextChargeAt != nil {
		current, err := h.Store.Get(ctx, scope, id)
		if err != nil {
			return err
		}
		s := Reschedule(current, p)
		next = &s
	}

	s, err := h.Store.Update(ctx, scope, id, p, next)
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"data": s})
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
