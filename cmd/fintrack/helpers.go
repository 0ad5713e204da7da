package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
)

// parseAmount accepts both 1234.56 and 1.234,56.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, common.NewUserError(fmt.Sprintf("Invalid amount %q", s), common.ErrInvalidInput)
	}
	return d, nil
}

// parseDate parses YYYY-MM-DD, defaulting to today.
func parseDate(s string) (model.Date, error) {
	if strings.TrimSpace(s) == "" {
		return model.Today(), nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, common.NewUserError(fmt.Sprintf("Invalid date %q, use YYYY-MM-DD", s), common.ErrInvalidInput)
	}
	return d, nil
}

// parseMonth parses YYYY-MM, defaulting to the month of now.
func parseMonth(s string, now time.Time) (int, time.Month, error) {
	if strings.TrimSpace(s) == "" {
		return now.Year(), now.Month(), nil
	}
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, common.NewUserError(fmt.Sprintf("Invalid month %q, use YYYY-MM", s), common.ErrInvalidInput)
	}
	return t.Year(), t.Month(), nil
}

// parseDay parses an optional day of month. Empty means unset.
func parseDay(s string) (*int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, common.NewUserError(fmt.Sprintf("Invalid day %q", s), common.ErrInvalidInput)
	}
	return &n, nil
}

func formatDay(d *int) string {
	if d == nil {
		return "-"
	}
	return strconv.Itoa(*d)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
