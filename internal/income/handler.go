package income

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/money"
)

const idempotencyHeader = "Idempotency-Key"

type Handler struct {
	Store    Store
	Location *time.Location
}

func NewHandler(store Store, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{Store: store, Location: loc}
}

func (h *Handler) parseFilter(c *fiber.Ctx) (Filter, error) {
	var f Filter
	var err error

	if f.Page, err = api.ParsePage(c, "page", "pageSize", 20, 100); err != nil {
		return f, err
	}
	if f.CategoryID, err = api.QueryInt64(c, "categoryId"); err != nil {
		return f, err
	}
	if f.Start, err = api.QueryTime(c, "start", h.Location); err != nil {
		return f, err
	}
	if f.End, err = api.QueryTime(c, "end", h.Location); err != nil {
		return f, err
	}

	v := &api.Validator{}
	f.SortBy = c.Query("sort", "created_at")
	_, known := sortColumns[f.SortBy]
	v.Check(known, "sort", "must be created_at or amount")

	order := c.Query("order", "desc")
	v.Check(order == "asc" || order == "desc", "order", "must be asc or desc")
	f.Ascending = order == "asc"

	return f, v.Err()
}

func (h *Handler) List(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}
	f, err := h.parseFilter(c)
	if err != nil {
		return err
	}

	items, total, err := h.Store.List(c.UserContext(), scope, f)
	if err != nil {
		return err
	}
	if items == nil {
		items = []Income{}
	}

	amounts := make([]decimal.Decimal, 0, len(items))
	for _, in := range items {
		amounts = append(amounts, in.Amount)
	}

	return api.OK(c, fiber.Map{
		"data":       items,
		"pagination": newPagination(f.Page, total),
		"summary":    Summary{TotalAmount: money.Round2(money.Sum(amounts...)), Count: total},
	})
}

func validateText(v *api.Validator, source, description *string) {
	v.MaxLen(source, "source", 200)
	v.MaxLen(description, "description", 500)
}

func requestHash(c *fiber.Ctx) string {
	sum := sha256.Sum256(append([]byte(c.Method()+" "+c.Path()+" "), c.Body()...))
	return hex.EncodeToString(sum[:])
}

// Create records an income. A repeated Idempotency-Key replays the first response.
func (h *Handler) Create(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	key := utils.CopyString(strings.TrimSpace(c.Get(idempotencyHeader)))
	hash := ""
	if key != "" {
		hash = requestHash(c)
		prior, err := h.Store.Receipt(ctx, scope, key)
		if err != nil {
			return err
		}
		if prior != nil {
			if prior.RequestHash != hash {
				return apperr.Conflict("idempotency key was used with a different request")
			}
			c.Status(prior.Status)
			c.Type("json")
			return c.Send(prior.Body)
		}
	}

	var req CreateRequest
	if err := api.BindJSON(c, &req); err != nil {
		return err
	}
	req.Source = api.TrimPtr(req.Source)
	req.Description = api.TrimPtr(req.Description)

	v := &api.Validator{}
	v.Check(req.Amount.IsPositive(), "amount", "amount must be greater than 0")
	v.Check(req.CategoryID == nil || *req.CategoryID > 0, "categoryId", "must be a positive integer")
	validateText(v, req.Source, req.Description)
	if err := v.Err(); err != nil {
		return err
	}

	in, err := h.Store.Create(ctx, scope, req)
	if err != nil {
		return err
	}

	body := fiber.Map{"success": true, "data": in}
	if key != "" {
		raw, mErr := json.Marshal(body)
		if mErr == nil {
			mErr = h.Store.Remember(ctx, scope, key, Receipt{RequestHash: hash, Status: fiber.StatusCreated, Body: raw})
		}
		if mErr != nil {
			logx.WithContext(ctx).Errorw("store idempotency receipt",
				logx.Field("key", key), logx.Field("error", mErr.Error()))
		}
	}
	return c.Status(fiber.StatusCreated).JSON(body)
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
	v.Check(p.CategoryID.Ptr() == nil || *p.CategoryID.Ptr() > 0, "categoryId", "must be a positive integer")
	validateText(v, p.Source.Ptr(), p.Description.Ptr())
	if err := v.Err(); err != nil {
		return err
	}

	in, err := h.Store.Update(c.UserContext(), scope, id, p)
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"data": in})
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
