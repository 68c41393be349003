package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/zeromicro/go-zero/core/logx"
)

func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = StatusOf(err)
		}

		fields := []logx.LogField{
			logx.Field("method", c.Method()),
			logx.Field("path", c.Path()),
			logx.Field("status", status),
			logx.Field("duration", time.Since(start).String()),
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			fields = append(fields, logx.Field("request_id", rid))
		}
		logx.WithContext(c.UserContext()).Infow("request", fields...)
		return err
	}
}
