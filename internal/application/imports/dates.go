package imports

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Spreadsheet day 0. Serial 60 is the phantom 1900-02-29, so counting from
// 1899-12-30 is exact for every date after February 1900.
var sheetEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Serial 2958465 is 9999-12-31.
const maxSerial = 2958465

var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"02-Jan-2006",
	"2-Jan-2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// yearMonth is a date rendered without its day, e.g. "2024.01".
var yearMonth = regexp.MustCompile(`^\d{4}\.\d{2}$`)

var (
	ErrBadDate   = errors.New("unrecognised date")
	ErrBadAmount = errors.New("amount must be a positive number")
)

// ParseSheetDate accepts a spreadsheet serial day count or a date string in
// one of the supported layouts. Results are in UTC.
func ParseSheetDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" || yearMonth.MatchString(v) {
		return time.Time{}, ErrBadDate
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		if f < 1 || f > maxSerial {
			return time.Time{}, ErrBadDate
		}
		days := int(f)
		secs := int((f-float64(days))*86400 + 0.5)
		return sheetEpoch.AddDate(0, 0, days).Add(time.Duration(secs) * time.Second), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrBadDate
}

// ParseAmount reads a positive amount, tolerating thousands separators and a
// rupee sign.
func ParseAmount(v string) (decimal.Decimal, error) {
	v = strings.NewReplacer(",", "", "₹", "", "INR", "", " ", "").Replace(strings.TrimSpace(v))
	d, err := decimal.NewFromString(v)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, ErrBadAmount
	}
	return d.Round(2), nil
}
