package category

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
)

type Handler struct {
	Store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{Store: store}
}

// List returns the caller's categories, seeding the default one for users
// that have none.
func (h *Handler) List(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	cats, err := h.Store.List(ctx, scope)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		if _, err := h.Store.Create(ctx, scope, CreateRequest{Name: DefaultName}); err != nil {
			if !apperr.IsUniqueViolation(err) {
				return err
			}
			// a concurrent request created it first
			logx.WithContext(ctx).Infow("default category already seeded", logx.Field("user_id", scope.UserID.String()))
		}
		if cats, err = h.Store.List(ctx, scope); err != nil {
			return err
		}
	}
	return api.OK(c, fiber.Map{"data": cats})
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
	v.MaxLen(req.Color, "color", 50)
	v.MaxLen(req.Icon, "icon", 50)
	if err := v.Err(); err != nil {
		return err
	}

	cat, err := h.Store.Create(c.UserContext(), scope, req)
	if err != nil {
		return err
	}
	return api.Created(c, fiber.Map{"data": cat})
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

	var patch Patch
	if err := api.BindJSON(c, &patch); err != nil {
		return err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
	}

	v := &api.Validator{}
	v.Check(patch.Name != nil || patch.Color.Set || patch.Icon.Set, "body", "no fields to update")
	v.Check(patch.Name == nil || *patch.Name != "", "name", "name is required")
	v.MaxLen(patch.Name, "name", 100)
	v.MaxLen(patch.Color.Ptr(), "color", 50)
	v.MaxLen(patch.Icon.Ptr(), "icon", 50)
	if err := v.Err(); err != nil {
		return err
	}

	cat, err := h.Store.Update(c.UserContext(), scope, id, patch)
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"data": cat})
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
