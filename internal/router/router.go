package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/budget"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/carbon"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/category"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/chat"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/expense"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/gamification"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/income"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/profile"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/recommendation"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/reports"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/savings"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/subscription"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/transport"
)

type Router struct {
	Profile        *profile.Handler
	Categories     *category.Handler
	Expenses       *expense.Handler
	Incomes        *income.Handler
	Budgets        *budget.Handler
	Savings        *savings.Handler
	Subscriptions  *subscription.Handler
	Carbon         *carbon.Handler
	Transport      *transport.Handler
	Gamification   *gamification.Handler
	Recommendation *recommendation.Handler
	Chat           *chat.Handler
	Reports        *reports.Handler

	// AuthMW guards everything under /api. WriteLimit, when set, runs after it.
	AuthMW     fiber.Handler
	WriteLimit fiber.Handler
}

func health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ok": true})
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	app.Get("/health", health)
	app.Get("/healthz", health)

	handlers := []fiber.Handler{r.AuthMW}
	if r.WriteLimit != nil {
		handlers = append(handlers, r.WriteLimit)
	}
	api := app.Group("/api", handlers...)

	if h := r.Profile; h != nil {
		api.Get("/profile", h.Get)
		api.Patch("/profile", h.Update)
	}

	if h := r.Categories; h != nil {
		api.Get("/categories", h.List)
		api.Post("/categories", h.Create)
		api.Patch("/categories/:id", h.Update)
		api.Delete("/categories/:id", h.Delete)
	}

	if h := r.Expenses; h != nil {
		api.Get("/expenses", h.List)
		api.Post("/expenses", h.Create)
		api.Patch("/expenses/:id", h.Update)
		api.Delete("/expenses/:id", h.Delete)
	}

	if h := r.Incomes; h != nil {
		api.Get("/incomes", h.List)
		api.Post("/incomes", h.Create)
		api.Patch("/incomes/:id", h.Update)
		api.Delete("/incomes/:id", h.Delete)
	}

	if h := r.Budgets; h != nil {
		api.Get("/budgets", h.List)
		api.Post("/budgets", h.Upsert)
		api.Patch("/budgets/:id", h.Update)
		api.Delete("/budgets/:id", h.Delete)
	}

	if h := r.Savings; h != nil {
		api.Get("/savings-goals", h.List)
		api.Post("/savings-goals", h.Create)
		api.Patch("/savings-goals", h.Contribute)
		api.Patch("/savings-goals/:id", h.Update)
		api.Delete("/savings-goals/:id", h.Delete)
	}

	if h := r.Subscriptions; h != nil {
		api.Get("/subscriptions", h.List)
		api.Post("/subscriptions", h.Create)
		api.Patch("/subscriptions/:id", h.Update)
		api.Delete("/subscriptions/:id", h.Delete)
	}

	if h := r.Carbon; h != nil {
		api.Get("/carbon/summary", h.Summary)
	}
	if h := r.Transport; h != nil {
		api.Get("/transport/heatmap", h.Heatmap)
	}

	if h := r.Gamification; h != nil {
		api.Get("/gamification/achievements", h.ListAchievements)
		api.Post("/gamification/check", h.Check)
	}

	if h := r.Recommendation; h != nil {
		api.Post("/recommendations/generate", h.Generate)
		api.Get("/recommendations", h.List)
		api.Patch("/recommendations/:id", h.MarkSeen)
	}

	if h := r.Chat; h != nil {
		api.Post("/chat", h.Chat)
	}

	if h := r.Reports; h != nil {
		api.Get("/reports/monthly.pdf", h.MonthlyPDF)
	}
}
