package reports

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/phpdave11/gofpdf"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/api"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/apperr"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/auth"
	"github.com/ishantswami13-crypto/greenledger-backend/internal/money"
)

type Handler struct {
	Sources  Sources
	Location *time.Location
	Now      func() time.Time
}

func NewHandler(src Sources, loc *time.Location) *Handler {
	return &Handler{Sources: src, Location: loc, Now: time.Now}
}

func (h *Handler) MonthlyPDF(c *fiber.Ctx) error {
	scope, err := auth.ScopeFrom(c)
	if err != nil {
		return err
	}
	now := h.Now().In(h.Location)
	month, year, err := api.Period(c, now)
	if err != nil {
		return err
	}

	st, err := Build(c.UserContext(), h.Sources, scope, month, year, h.Location, now)
	if err != nil {
		return err
	}
	out, err := Render(st)
	if err != nil {
		return apperr.Internal("render statement", err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="greenledger-%04d-%02d.pdf"`, year, month))
	return c.Send(out)
}

func header(pdf *gofpdf.Fpdf, widths []float64, titles []string, aligns string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(245, 245, 245)
	pdf.SetTextColor(20, 20, 20)
	for i, t := range titles {
		ln := 0
		if i == len(titles)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 8, t, "1", ln, string(aligns[i]), true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(30, 30, 30)
}

func row(pdf *gofpdf.Fpdf, widths []float64, cells []string, aligns string) {
	for i, v := range cells {
		ln := 0
		if i == len(cells)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 7, v, "1", ln, string(aligns[i]), false, 0, "")
	}
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(20, 20, 20)
	pdf.Cell(0, 8, title)
	pdf.Ln(8)
}

// Render lays out the statement on A4 pages.
func Render(st Statement) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(14, 14, 14)
	pdf.SetAutoPageBreak(true, 20)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 10, fmt.Sprintf("Generated %s - page %d", st.GeneratedAt.Format(time.RFC3339), pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetTextColor(20, 20, 20)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Monthly statement")
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s %d", time.Month(st.Month), st.Year))
	pdf.Ln(5)
	pdf.Cell(0, 6, "User: "+maskID(st.UserID))
	pdf.Ln(10)

	pdf.SetDrawColor(200, 200, 200)
	pdf.SetFillColor(248, 248, 248)
	pdf.SetTextColor(20, 20, 20)
	sumW := []float64{45.5, 45.5, 45.5, 45.5}
	pdf.SetFont("Helvetica", "B", 11)
	for i, t := range []string{"Income", "Expenses", "Balance", "CO2 (kg)"} {
		ln := 0
		if i == 3 {
			ln = 1
		}
		pdf.CellFormat(sumW[i], 10, t, "1", ln, "C", true, 0, "")
	}
	pdf.SetFont("Helvetica", "", 11)
	row(pdf, sumW, []string{
		money.Format(st.Totals.Income),
		money.Format(st.Totals.Expense),
		money.Format(st.Balance()),
		st.CarbonKg.StringFixed(2),
	}, "CCCC")

	section(pdf, "Carbon by category")
	if len(st.Carbon) == 0 {
		empty(pdf, "No carbon recorded this month.")
	} else {
		w := []float64{112, 35, 35}
		header(pdf, w, []string{"CATEGORY", "EXPENSES", "CO2 (KG)"}, "LRR")
		for _, cc := range st.Carbon {
			name := "Uncategorized"
			if cc.CategoryName != nil {
				name = *cc.CategoryName
			}
			row(pdf, w, []string{tr(trimTo(name, 60)), fmt.Sprint(cc.Count), cc.CarbonKg.StringFixed(2)}, "LRR")
		}
	}

	section(pdf, "Budgets")
	if len(st.Budgets) == 0 {
		empty(pdf, "No budgets set for this month.")
	} else {
		w := []float64{82, 35, 35, 30}
		header(pdf, w, []string{"CATEGORY", "LIMIT", "SPENT", "USED"}, "LRRR")
		for _, b := range st.Budgets {
			name := fmt.Sprintf("#%d", b.CategoryID)
			if b.Category != nil {
				name = b.Category.Name
			}
			row(pdf, w, []string{
				tr(trimTo(name, 45)),
				money.Format(b.LimitAmount),
				money.Format(b.SpentAmount),
				b.PercentUsed.StringFixed(0) + "%",
			}, "LRRR")
		}
	}

	section(pdf, "Expenses")
	if len(st.Lines) == 0 {
		empty(pdf, "No expenses this month.")
	} else {
		w := []float64{26, 70, 46, 22, 18}
		titles := []string{"DATE", "MERCHANT", "CATEGORY", "AMOUNT", "CO2"}
		header(pdf, w, titles, "CLLRR")
		for _, l := range st.Lines {
			if pdf.GetY() > 265 {
				pdf.AddPage()
				header(pdf, w, titles, "CLLRR")
			}
			row(pdf, w, []string{
				l.CreatedAt.Format("2006-01-02"),
				tr(trimTo(deref(l.Merchant, "-"), 40)),
				tr(trimTo(deref(l.Category, "-"), 26)),
				money.Format(l.Amount),
				carbonCell(l),
			}, "CLLRR")
		}
		if st.Truncated {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.CellFormat(0, 7, fmt.Sprintf("Only the latest %d expenses are listed.", MaxLines), "1", 1, "C", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func empty(pdf *gofpdf.Fpdf, msg string) {
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.Cell(0, 6, msg)
	pdf.Ln(6)
}

func carbonCell(l Line) string {
	if !l.CarbonKg.Valid {
		return "-"
	}
	return l.CarbonKg.Decimal.StringFixed(2)
}

func deref(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}

func maskID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) <= 8 {
		return id
	}
	return id[:4] + "..." + id[len(id)-4:]
}

// trimTo shortens s to max runes.
func trimTo(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
