package recommendation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/activity"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/llm"
)

const schema = `[
  {
    "title": string,
    "description": string,
    "category": string,
    "potential_savings": number,
    "carbon_reduction": number,
    "action_steps": string[],
    "priority": "low" | "medium" | "high"
  }
]`

// Prompt asks the model for recommendations grounded in the trailing window.
func Prompt(s activity.Summary, focus string) []llm.Message {
	if focus == "" {
		focus = "general"
	}
	user := fmt.Sprintf("You are a personal finance and sustainability assistant. Generate JSON recommendations with this schema:\n%s\n"+
		"Based on the last %d days: total=%s, CO2=%skg, focus=%s. Reply with valid JSON only (no markdown).",
		schema, activity.WindowDays, s.TotalAmount.StringFixed(2), s.TotalCarbon.StringFixed(2), focus)
	return []llm.Message{
		{Role: llm.RoleSystem, Content: "Reply with valid JSON only."},
		{Role: llm.RoleUser, Content: user},
	}
}

// UpstreamError maps a completion failure to the response the caller sees.
func UpstreamError(err error, msg string) error {
	if errors.Is(err, llm.ErrNotConfigured) {
		return apperr.Internal("llm client", err)
	}
	return apperr.Upstream(msg, err)
}

type Handler struct {
	Store    Store
	Activity activity.Store
	LLM      llm.Completer
	Now      func() time.Time
}

func NewHandler(store Store, act activity.Store, completer llm.Completer) *Handler {
	return &Handler{Store: store, Activity: act, LLM: completer, Now: time.Now}
}

// Generate asks the model for fresh recommendations and stores them.
func (h *Handler) Generate(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}
	focus := c.Query("focus")
	if focus != "" && !focuses[focus] {
		return apperr.Validation("invalid query", apperr.FieldError{Field: "focus", Message: "must be one of savings, eco, transport, health"})
	}

	ctx := c.UserContext()
	now := h.Now()
	drafts, err := h.generate(ctx, scope, focus, now)
	if err != nil {
		return err
	}

	saved, err := h.Store.Insert(ctx, scope, drafts, now, now.Add(TTL))
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"recommendations": saved})
}

func (h *Handler) generate(ctx context.Context, scope auth.Scope, focus string, now time.Time) ([]Draft, error) {
	summary, err := activity.Load(ctx, h.Activity, scope, now)
	if err != nil {
		return nil, err
	}
	content, err := h.LLM.Complete(ctx, Prompt(summary, focus))
	if err != nil {
		return nil, UpstreamError(err, "failed to generate recommendations")
	}

	drafts := Coerce(content)
	if len(drafts) == 0 {
		logx.WithContext(ctx).Infow("llm returned no usable recommendations",
			logx.Field("focus", focus), logx.Field("length", len(content)))
	}
	return drafts, nil
}

func (h *Handler) List(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}
	seen, err := api.QueryBool(c, "seen")
	if err != nil {
		return err
	}
	recs, err := h.Store.Active(c.UserContext(), scope, h.Now(), seen)
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"recommendations": recs})
}

// MarkSeen sets the seen flag; an empty body marks the recommendation seen.
func (h *Handler) MarkSeen(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}
	id, err := api.ParamID(c)
	if err != nil {
		return err
	}

	seen := true
	if len(c.Body()) > 0 {
		var req SeenRequest
		if err := api.BindJSON(c, &req); err != nil {
			return err
		}
		if req.Seen != nil {
			seen = *req.Seen
		}
	}

	rec, err := h.Store.MarkSeen(c.UserContext(), scope, id, seen)
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"recommendation": rec})
}
