package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/activity"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/budget"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/carbon"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/category"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/chat"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/config"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/expense"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/gamification"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/income"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/llm"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/notify"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/profile"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/ratelimit"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/recommendation"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/reports"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/router"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/savings"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/subscription"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/transport"
)

var configFile = flag.String("f", os.Getenv("CONFIG_FILE"), "optional YAML config file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		logx.Must(err)
	}
	logx.MustSetup(cfg.Log)
	defer logx.Close()

	loc, _ := cfg.Location()
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logx.Must(err)
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		logx.Errorw("database ping failed", logx.Field("err", err.Error()))
	}

	profiles := profile.NewRepository(pool)
	acts := activity.NewRepository(pool)
	carbonRepo := carbon.NewRepository(pool)
	budgets := budget.NewRepository(pool)
	completer := llm.New(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, time.Duration(cfg.LLM.TimeoutSeconds)*time.Second)

	r := &router.Router{
		Profile:        profile.NewHandler(profiles),
		Categories:     category.NewHandler(category.NewRepository(pool)),
		Expenses:       expense.NewHandler(expense.NewRepository(pool), loc),
		Incomes:        income.NewHandler(income.NewRepository(pool), loc),
		Budgets:        budget.NewHandler(budgets, loc),
		Savings:        savings.NewHandler(savings.NewRepository(pool)),
		Subscriptions:  subscription.NewHandler(subscription.NewRepository(pool)),
		Carbon:         carbon.NewHandler(carbonRepo, loc),
		Transport:      transport.NewHandler(transport.NewRepository(pool), loc),
		Gamification:   gamification.NewHandler(gamification.NewService(gamification.NewRepository(pool), notifier(cfg, profiles), loc)),
		Recommendation: recommendation.NewHandler(recommendation.NewRepository(pool), acts, completer),
		Chat:           chat.NewHandler(acts, completer),
		Reports: reports.NewHandler(reports.Sources{
			Statements: reports.NewRepository(pool),
			Carbon:     carbonRepo,
			Budgets:    budgets,
		}, loc),
		AuthMW:     auth.Middleware(verifier(cfg)),
		WriteLimit: writeLimiter(cfg),
	}

	app := fiber.New(fiber.Config{ErrorHandler: api.ErrorHandler})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(router.CorsMiddleware(cfg.CorsOrigin))
	app.Use(api.RequestLogger())
	r.RegisterRoutes(app)

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		logx.Info("shutting down")
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	logx.Infow("listening", logx.Field("port", cfg.Port), logx.Field("auth_mode", cfg.Auth.Mode))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logx.Errorw("server stopped", logx.Field("err", err.Error()))
	}
}

func verifier(cfg config.Config) auth.Verifier {
	if cfg.Auth.Mode == config.AuthModeRemote {
		return auth.NewRemoteVerifier(cfg.Auth.SupabaseURL, cfg.Auth.AnonKey)
	}
	return auth.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.Audience)
}

func notifier(cfg config.Config, chats notify.ChatLookup) gamification.Notifier {
	if cfg.Telegram.Token == "" {
		return notify.Nop{}
	}
	bot, err := notify.NewTelegram(cfg.Telegram.Token, chats)
	if err != nil {
		logx.Errorw("telegram disabled", logx.Field("err", err.Error()))
		return notify.Nop{}
	}
	return bot
}

func writeLimiter(cfg config.Config) fiber.Handler {
	opts := ratelimit.Options{
		Max:    cfg.RateLimit.WriteMax,
		Window: time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
	}
	if cfg.Redis.Addr != "" {
		storage, err := ratelimit.NewRedisStorage(cfg.Redis.Addr, cfg.Redis.Pass)
		if err != nil {
			logx.Errorw("redis unavailable, rate limits are per instance", logx.Field("err", err.Error()))
		} else {
			opts.Storage = storage
		}
	}
	return ratelimit.Writes(opts)
}
