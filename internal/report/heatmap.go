package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ishantswami13-crypto/greenledger-backend/internal/money"
)

const OtherTransport = "other"

// DayNames is indexed by time.Weekday (0 = Sunday).
var DayNames = [7]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

type TransportRecord struct {
	Amount        decimal.NullDecimal
	CreatedAt     time.Time
	TransportType *string
}

type DayBucket struct {
	Day    string          `json:"day"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type HourBucket struct {
	Hour   int             `json:"hour"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type TypeBucket struct {
	Type   string          `json:"type"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type HeatmapRow struct {
	Day   string       `json:"day"`
	Hours []HourBucket `json:"hours"`
}

type Totals struct {
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalCount  int             `json:"totalCount"`
}

type Patterns struct {
	ByDay  []DayBucket  `json:"byDay"`
	ByHour []HourBucket `json:"byHour"`
	ByType []TypeBucket `json:"byType"`
}

type Heatmap struct {
	Period   string       `json:"period"`
	Totals   Totals       `json:"totals"`
	Patterns Patterns     `json:"patterns"`
	Heatmap  []HeatmapRow `json:"heatmap"`
}

type slot struct {
	day  time.Weekday
	hour int
}

// TransportHeatmap buckets transport spend into a 7x24 day/hour matrix using
// the wall clock of loc, plus per-day, per-hour and per-type breakdowns.
func TransportHeatmap(period string, records []TransportRecord, loc *time.Location) Heatmap {
	if loc == nil {
		loc = time.Local
	}

	amount := func(r TransportRecord) decimal.Decimal { return money.OrZero(r.Amount) }
	local := func(r TransportRecord) time.Time { return r.CreatedAt.In(loc) }

	byDay := Group(records, func(r TransportRecord) time.Weekday { return local(r).Weekday() }, amount)
	byHour := Group(records, func(r TransportRecord) int { return local(r).Hour() }, amount)
	bySlot := Group(records, func(r TransportRecord) slot {
		t := local(r)
		return slot{day: t.Weekday(), hour: t.Hour()}
	}, amount)
	byType := Group(records, func(r TransportRecord) string {
		if r.TransportType == nil || strings.TrimSpace(*r.TransportType) == "" {
			return OtherTransport
		}
		return strings.TrimSpace(*r.TransportType)
	}, amount)

	h := Heatmap{
		Period: period,
		Totals: Totals{TotalAmount: money.Round2(byDay.Total), TotalCount: byDay.Count},
		Patterns: Patterns{
			ByDay:  make([]DayBucket, 0, 7),
			ByHour: make([]HourBucket, 0, 24),
			ByType: make([]TypeBucket, 0, len(byType.Buckets)),
		},
		Heatmap: make([]HeatmapRow, 0, 7),
	}

	for d := time.Sunday; d <= time.Saturday; d++ {
		b := byDay.Get(d)
		h.Patterns.ByDay = append(h.Patterns.ByDay, DayBucket{Day: DayNames[d], Count: b.Count, Amount: b.Amount})

		row := HeatmapRow{Day: DayNames[d], Hours: make([]HourBucket, 0, 24)}
		for hour := 0; hour < 24; hour++ {
			s := bySlot.Get(slot{day: d, hour: hour})
			row.Hours = append(row.Hours, HourBucket{Hour: hour, Count: s.Count, Amount: s.Amount})
		}
		h.Heatmap = append(h.Heatmap, row)
	}
	for hour := 0; hour < 24; hour++ {
		b := byHour.Get(hour)
		h.Patterns.ByHour = append(h.Patterns.ByHour, HourBucket{Hour: hour, Count: b.Count, Amount: b.Amount})
	}
	for _, b := range byType.SortedByAmount() {
		h.Patterns.ByType = append(h.Patterns.ByType, TypeBucket{Type: b.Key, Count: b.Count, Amount: b.Amount})
	}
	return h
}
