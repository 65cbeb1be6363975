package dto

import (
	"fmt"
	"time"
)

// ReportRangeParams is an optional inclusive date range, YYYY-MM-DD.
type ReportRangeParams struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// Bounds parses the range. Missing bounds are nil.
func (p ReportRangeParams) Bounds() (*time.Time, *time.Time, error) {
	from, err := parseOptionalDate(p.From)
	if err != nil {
		return nil, nil, err
	}
	to, err := parseOptionalDate(p.To)
	if err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, fmt.Errorf("'to' date must not be before 'from' date")
	}
	return from, to, nil
}

// AsOfParams carries an optional as-of date, YYYY-MM-DD.
type AsOfParams struct {
	AsOf string `form:"asOf" binding:"omitempty,datetime=2006-01-02"`
}

// Date parses the as-of date. A missing value is nil.
func (p AsOfParams) Date() (*time.Time, error) {
	return parseOptionalDate(p.AsOf)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return &t, nil
}
