package budget

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/money"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/progress"
)

type Handler struct {
	Store    Store
	Location *time.Location
	Now      func() time.Time
}

func NewHandler(store Store, loc *time.Location) *Handler {
	if loc == nil {
		loc = time.Local
	}
	return &Handler{Store: store, Location: loc, Now: time.Now}
}

func (h *Handler) now() time.Time { return h.Now().In(h.Location) }

// Summarize derives per-budget and overall usage. The overall percentage is
// not clamped; only the per-budget bar is.
func Summarize(budgets []Budget) ([]View, Totals) {
	views := make([]View, 0, len(budgets))
	limits := make([]decimal.Decimal, 0, len(budgets))
	spent := make([]decimal.Decimal, 0, len(budgets))
	for _, b := range budgets {
		p := progress.Of(b.SpentAmount, b.LimitAmount)
		views = append(views, View{Budget: b, PercentUsed: p.Percent, BarPercent: p.BarPercent})
		limits = append(limits, b.LimitAmount)
		spent = append(spent, b.SpentAmount)
	}

	t := Totals{TotalLimit: money.Sum(limits...), TotalSpent: money.Sum(spent...)}
	t.PercentUsed = progress.Percent(t.TotalSpent, t.TotalLimit).Round(2)
	return views, t
}

func (h *Handler) List(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}
	month, year, err := api.Period(c, h.now())
	if err != nil {
		return err
	}

	budgets, err := h.Store.ForPeriod(c.UserContext(), scope, month, year)
	if err != nil {
		return err
	}
	views, totals := Summarize(budgets)
	return api.OK(c, fiber.Map{"budgets": views, "summary": totals})
}

func checkPeriod(v *api.Validator, month, year *int) {
	v.Check(month == nil || (*month >= 1 && *month <= 12), "month", "must be between 1 and 12")
	v.Check(year == nil || api.ValidYear(*year), "year", "must be between "+strconv.Itoa(api.MinYear)+" and "+strconv.Itoa(api.MaxYear))
}

func (h *Handler) Upsert(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}

	var req UpsertRequest
	if err := api.BindJSON(c, &req); err != nil {
		return err
	}

	v := &api.Validator{}
	v.Check(req.CategoryID > 0, "categoryId", "must be a positive integer")
	v.Check(!req.LimitAmount.IsNegative(), "limitAmount", "must be 0 or greater")
	checkPeriod(v, req.Month, req.Year)
	if err := v.Err(); err != nil {
		return err
	}

	now := h.now()
	month, year := int(now.Month()), now.Year()
	if req.Month != nil {
		month = *req.Month
	}
	if req.Year != nil {
		year = *req.Year
	}

	b, err := h.Store.Upsert(c.UserContext(), scope, req.CategoryID, month, year, req.LimitAmount)
	if err != nil {
		return err
	}
	return api.Created(c, fiber.Map{"budget": b})
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
	v.Check(p.LimitAmount == nil || !p.LimitAmount.IsNegative(), "limitAmount", "must be 0 or greater")
	v.Check(p.CategoryID == nil || *p.CategoryID > 0, "categoryId", "must be a positive integer")
	checkPeriod(v, p.Month, p.Year)
	if err := v.Err(); err != nil {
		return err
	}

	b, err := h.Store.Update(c.UserContext(), scope, id, p)
	if err != nil {
		return err
	}
	return api.OK(c, fiber.Map{"budget": b})
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
