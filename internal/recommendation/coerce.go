package recommendation

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	defaultTitle    = "Recommendation"
	defaultCategory = "general"
	defaultPriority = "medium"
)

var priorities = map[string]bool{"low": true, "medium": true, "high": true}

// Draft is one generated recommendation after coercion.
type Draft struct {
	Title            string
	Description      string
	Category         string
	PotentialSavings decimal.Decimal
	CarbonReduction  decimal.Decimal
	ActionSteps      []string
	Priority         string
}

// looseString accepts any JSON scalar and keeps its text. Objects, arrays and
// null leave it empty.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	switch b = bytes.TrimSpace(b); {
	case len(b) == 0, b[0] == '{', b[0] == '[', string(b) == "null":
		*s = ""
	default:
		*s = looseString(b)
	}
	return nil
}

// looseNumber accepts numbers and numeric strings; anything else is zero.
type looseNumber decimal.Decimal

func (n *looseNumber) UnmarshalJSON(b []byte) error {
	var str string
	raw := string(bytes.TrimSpace(b))
	if err := json.Unmarshal(b, &str); err == nil {
		raw = strings.TrimSpace(str)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		d = decimal.Zero
	}
	*n = looseNumber(d)
	return nil
}

// looseSteps keeps the scalar entries of a JSON array. Non-arrays are empty.
type looseSteps []string

func (s *looseSteps) UnmarshalJSON(b []byte) error {
	var items []looseString
	if err := json.Unmarshal(b, &items); err != nil {
		*s = nil
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it != "" {
			out = append(out, string(it))
		}
	}
	*s = out
	return nil
}

type generated struct {
	Title            looseString `json:"title"`
	Description      looseString `json:"description"`
	Category         looseString `json:"category"`
	PotentialSavings looseNumber `json:"potential_savings"`
	CarbonReduction  looseNumber `json:"carbon_reduction"`
	ActionSteps      looseSteps  `json:"action_steps"`
	Priority         looseString `json:"priority"`
}

func (g generated) draft() Draft {
	d := Draft{
		Title:            strings.TrimSpace(string(g.Title)),
		Description:      string(g.Description),
		Category:         strings.TrimSpace(string(g.Category)),
		PotentialSavings: decimal.Decimal(g.PotentialSavings),
		CarbonReduction:  decimal.Decimal(g.CarbonReduction),
		ActionSteps:      []string(g.ActionSteps),
		Priority:         strings.ToLower(strings.TrimSpace(string(g.Priority))),
	}
	if d.Title == "" {
		d.Title = defaultTitle
	}
	if d.Category == "" {
		d.Category = defaultCategory
	}
	if d.ActionSteps == nil {
		d.ActionSteps = []string{}
	}
	if !priorities[d.Priority] {
		d.Priority = defaultPriority
	}
	return d
}

// stripFence removes a surrounding ```json ... ``` block.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// Coerce parses model output into drafts. A single object counts as a list of
// one; malformed content yields no drafts, and non-object entries are skipped.
func Coerce(content string) []Draft {
	content = stripFence(content)

	var items []json.RawMessage
	switch {
	case strings.HasPrefix(content, "["):
		if err := json.Unmarshal([]byte(content), &items); err != nil {
			return []Draft{}
		}
	case strings.HasPrefix(content, "{"):
		items = []json.RawMessage{json.RawMessage(content)}
	default:
		return []Draft{}
	}

	out := make([]Draft, 0, len(items))
	for _, raw := range items {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		var g generated
		if err := json.Unmarshal(trimmed, &g); err != nil {
			continue
		}
		out = append(out, g.draft())
	}
	return out
}
