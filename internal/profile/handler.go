package profile

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
)

type Handler struct {
	Store Store
}

func NewHandler(store Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := auth.IdentityFrom(c)
	if err != nil {
		return err
	}
	scope := auth.Scope{UserID: id.UserID}

	p, err := h.Store.Ensure(c.UserContext(), scope, id)
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"user": fiber.Map{"id": scope.UserID.String()}, "profile": p})
}

func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := auth.IdentityFrom(c)
	if err != nil {
		return err
	}
	scope := auth.Scope{UserID: id.UserID}

	var patch Patch
	if err := api.BindJSON(c, &patch); err != nil {
		return err
	}

	v := &api.Validator{}
	v.Check(patch.FullName.Set || patch.AvatarURL.Set || patch.TelegramChatID.Set, "body", "no fields to update")
	v.MaxLen(patch.FullName.Ptr(), "full_name", 200)
	v.MaxLen(patch.AvatarURL.Ptr(), "avatar_url", 500)
	if err := v.Err(); err != nil {
		return err
	}

	if _, err := h.Store.Ensure(c.UserContext(), scope, id); err != nil {
		return err
	}
	p, err := h.Store.Update(c.UserContext(), scope, patch)
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"profile": p})
}
