// Package chat forwards a conversation to the assistant with the caller's
// recent spending as system context.
package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/activity"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/llm"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/recommendation"
)

const noReply = "No response"

var roles = map[string]bool{llm.RoleUser: true, llm.RoleAssistant: true, llm.RoleSystem: true}

type Request struct {
	Messages []llm.Message `json:"messages"`
}

func (r Request) validate() error {
	v := &api.Validator{}
	v.Check(len(r.Messages) > 0, "messages", "at least one message is required")
	for i, m := range r.Messages {
		field := fmt.Sprintf("messages.%d", i)
		v.Check(roles[m.Role], field+".role", "must be user, assistant or system")
		v.Check(m.Content != "", field+".content", "must not be empty")
	}
	return v.Err()
}

// SystemContext describes the trailing window to the model.
func SystemContext(s activity.Summary) string {
	var b strings.Builder
	b.WriteString("You are a friendly personal finance assistant. Answer briefly and clearly.\n")
	fmt.Fprintf(&b, "User context (last %d days): total=$%s, transactions=%d, CO2=%skg, top merchant=%s.\n",
		activity.WindowDays, s.TotalAmount.StringFixed(2), s.Count, s.TotalCarbon.StringFixed(2), s.TopMerchant)
	b.WriteString("Give practical tips in a casual tone, with no promises or guarantees. When asked for calculations, state your assumptions.")
	return b.String()
}

type Handler struct {
	Activity activity.Store
	LLM      llm.Completer
	Now      func() time.Time
}

func NewHandler(act activity.Store, completer llm.Completer) *Handler {
	return &Handler{Activity: act, LLM: completer, Now: time.Now}
}

func (h *Handler) Chat(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}

	var req Request
	if err := api.BindJSON(c, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}

	ctx := c.UserContext()
	summary, err := activity.Load(ctx, h.Activity, scope, h.Now())
	if err != nil {
		return err
	}

	msgs := make([]llm.Message, 0, len(req.Messages)+1)
	msgs = append(msgs, llm.Message{Role: llm.RoleSystem, Content: SystemContext(summary)})
	msgs = append(msgs, req.Messages...)

	reply, err := h.LLM.Complete(ctx, msgs)
	if err != nil {
		return recommendation.UpstreamError(err, "failed to generate a reply")
	}
	if strings.TrimSpace(reply) == "" {
		reply = noReply
	}
	return api.OK(c, fiber.Map{"message": llm.Message{Role: llm.RoleAssistant, Content: reply}})
}
