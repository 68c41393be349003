package api

import "github.com/gofiber/fiber/v2"

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

func NewPagination(page Page, total int64) Pagination {
	pages := 0
	if page.Limit > 0 {
		pages = int((total + int64(page.Limit) - 1) / int64(page.Limit))
	}
	return Pagination{Page: page.Number, Limit: page.Limit, Total: total, TotalPages: pages}
}

// OK writes body with success set.
func OK(c *fiber.Ctx, body fiber.Map) error {
	body["success"] = true
	return c.JSON(body)
}

func Created(c *fiber.Ctx, body fiber.Map) error {
	body["success"] = true
	return c.Status(fiber.StatusCreated).JSON(body)
}
