package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/zeromicro/go-zero/core/logx"
)

var errMissingDSN = errors.New("DATABASE_URL is not set")

var file = flag.String("file", "migrations/migrations.sql", "SQL file to apply")

func main() {
	flag.Parse()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logx.Must(errMissingDSN)
	}

	db, err := sql.Open("pgx", dsn)
	logx.Must(err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	logx.Must(db.PingContext(ctx))

	sqlBytes, err := os.ReadFile(*file)
	logx.Must(err)

	logx.Infow("applying migrations", logx.Field("file", *file))
	if _, err := db.ExecContext(ctx, string(sqlBytes)); err != nil {
		logx.Must(err)
	}
	logx.Info("migrations applied")
}
