package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type combination operators for FilterCriteria.Types.
const (
	OperatorAnd = "and"
	OperatorOr  = "or"
)

// Sort orders accepted by the event query engine.
const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortDateAsc   = "date_asc"
	SortDateDesc  = "date_desc"
	SortRating    = "rating"
)

// DateSpec is either a relative-date keyword ("today", "next week",
// "next 5 days", ...) or an explicit start/end pair. On the wire it is a JSON
// string for the former and a {"start","end"} object for the latter.
type DateSpec struct {
	Keyword string
	Start   time.Time
	End     time.Time
}

// Explicit reports whether concrete bounds were supplied rather than a keyword.
func (d DateSpec) Explicit() bool {
	return d.Keyword == ""
}

// dateRangeObject is the wire form of an explicit range.
type dateRangeObject struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// UnmarshalJSON accepts either a keyword string or a {start,end} object.
func (d *DateSpec) UnmarshalJSON(data []byte) error {
	var keyword string
	if err := json.Unmarshal(data, &keyword); err == nil {
		*d = DateSpec{Keyword: keyword}
		return nil
	}

	var obj dateRangeObject
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("dateRange must be a string or a {start,end} object: %w", err)
	}
	start, err := ParseDate(obj.Start)
	if err != nil {
		return fmt.Errorf("dateRange start: %w", err)
	}
	end, err := ParseDate(obj.End)
	if err != nil {
		return fmt.Errorf("dateRange end: %w", err)
	}
	*d = DateSpec{Start: start, End: end}
	return nil
}

// MarshalJSON mirrors UnmarshalJSON so criteria echo back in their wire form.
func (d DateSpec) MarshalJSON() ([]byte, error) {
	if d.Keyword != "" {
		return json.Marshal(d.Keyword)
	}
	return json.Marshal(dateRangeObject{
		Start: d.Start.Format("2006-01-02"),
		End:   d.End.Format("2006-01-02"),
	})
}

// ParseDate parses the date formats the completion service emits.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// FilterCriteria is the normalized intermediate representation connecting the
// criteria extractor to the event query engine. Every present field is already
// in its concrete form; the engine never parses raw human phrases itself
// (price/attendance strings are machine-checked comparison phrases resolved by
// the comparator at compile time).
//
// IsReported is deliberately asymmetric: true restricts results to flagged
// events, false imposes no constraint at all. An explicit false does NOT mean
// "only unreported".
type FilterCriteria struct {
	Types      []string  `json:"types,omitempty"`
	Operator   string    `json:"operator,omitempty"`
	Location   string    `json:"location,omitempty"`
	DateRange  *DateSpec `json:"dateRange,omitempty"`
	Price      string    `json:"price,omitempty"`
	Organizer  string    `json:"organizer,omitempty"`
	SearchTerm string    `json:"searchTerm,omitempty"`
	Attendance string    `json:"attendance,omitempty"`
	Sort       string    `json:"sort,omitempty"`
	IsReported bool      `json:"isReported"`

	// Browse-only fields supplied by GET /events/filter; the extractor never
	// populates these.
	LocationType string   `json:"-"`
	MaxPrice     *float64 `json:"-"`
}
