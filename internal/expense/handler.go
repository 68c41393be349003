package expense

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/carbon"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/money"
)

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

	if f.Page, err = api.ParsePage(c, "page", "limit", 20, 100); err != nil {
		return f, err
	}
	if f.CategoryID, err = api.QueryInt64(c, "categoryId"); err != nil {
		return f, err
	}
	if f.Start, err = api.QueryTime(c, "startDate", h.Location); err != nil {
		return f, err
	}
	if f.End, err = api.QueryTime(c, "endDate", h.Location); err != nil {
		return f, err
	}
	if f.MinAmount, err = api.QueryDecimal(c, "minAmount"); err != nil {
		return f, err
	}
	if f.MaxAmount, err = api.QueryDecimal(c, "maxAmount"); err != nil {
		return f, err
	}
	f.Search = strings.TrimSpace(c.Query("search"))

	v := &api.Validator{}
	f.SortBy = c.Query("sortBy", "created_at")
	_, known := sortColumns[f.SortBy]
	v.Check(known, "sortBy", "must be one of created_at, amount, merchant")

	order := c.Query("sortOrder", "desc")
	v.Check(order == "asc" || order == "desc", "sortOrder", "must be asc or desc")
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

	return api.OK(c, fiber.Map{
		"data":       items,
		"pagination": api.NewPagination(f.Page, total),
		"summary":    summarize(items, total),
	})
}

// summarize totals the returned page; count is the number of matching rows.
func summarize(items []Expense, total int64) Summary {
	amounts := make([]decimal.Decimal, 0, len(items))
	for _, e := range items {
		amounts = append(amounts, e.Amount)
	}
	sum := money.Sum(amounts...)

	avg := decimal.Zero
	if len(items) > 0 {
		avg = sum.Div(decimal.NewFromInt(int64(len(items))))
	}
	return Summary{TotalAmount: money.Round2(sum), AvgAmount: money.Round2(avg), Count: total}
}

func validateText(v *api.Validator, merchant, description, transport *string) {
	v.MaxLen(merchant, "merchant", 200)
	v.MaxLen(description, "description", 500)
	v.MaxLen(transport, "transportType", 50)
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
	req.Merchant = api.TrimPtr(req.Merchant)
	req.Description = api.TrimPtr(req.Description)
	req.TransportType = api.TrimPtr(req.TransportType)

	v := &api.Validator{}
	v.Check(req.Amount.IsPositive(), "amount", "amount must be greater than 0")
	v.Check(req.CategoryID == nil || *req.CategoryID > 0, "categoryId", "must be a positive integer")
	v.Check(req.CarbonKg == nil || !req.CarbonKg.IsNegative(), "carbonKg", "must be 0 or greater")
	validateText(v, req.Merchant, req.Description, req.TransportType)
	if err := v.Err(); err != nil {
		return err
	}

	if req.CarbonKg == nil {
		kg := decimal.Zero
		if req.TransportType != nil {
			if est, ok := carbon.EstimateKg(*req.TransportType); ok {
				kg = est
			}
		}
		req.CarbonKg = &kg
	}

	e, err := h.Store.Create(c.UserContext(), scope, req)
	if err != nil {
		return err
	}
	return api.Created(c, fiber.Map{"data": e})
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
	v.Check(p.CarbonKg == nil || !p.CarbonKg.IsNegative(), "carbonKg", "must be 0 or greater")
	validateText(v, p.Merchant.Ptr(), p.Description.Ptr(), p.TransportType.Ptr())
	if err := v.Err(); err != nil {
		return err
	}

	e, err := h.Store.Update(c.UserContext(), scope, id, p)
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"data": e})
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
