package tables

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// NullFloat is a CSV float where an empty or NaN cell means "no value".
type NullFloat struct {
	Float64 float64
	Valid   bool
}

func NewNullFloat(f float64) NullFloat {
	return NullFloat{Float64: f, Valid: !math.IsNaN(f)}
}

// Or returns the value, or def when it is missing.
func (n NullFloat) Or(def float64) float64 {
	if !n.Valid {
		return def
	}
	return n.Float64
}

func (n NullFloat) MarshalCSV() (string, error) {
	if !n.Valid {
		return "", nil
	}
	return strconv.FormatFloat(n.Float64, 'f', -1, 64), nil
}

func (n *NullFloat) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		*n = NullFloat{}
		return nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return fmt.Errorf("parsing float %q: %w", s, err)
	}
	*n = NewNullFloat(f)
	return nil
}

const dateLayout = "2006-01-02"

var dateLayouts = []string{dateLayout, "2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01"}

// Date is a calendar date cell.
type Date struct {
	Time time.Time
}

func (d Date) MarshalCSV() (string, error) {
	if d.Time.IsZero() {
		return "", nil
	}
	return d.Time.Format(dateLayout), nil
}

func (d *Date) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("parsing date %q", s)
}
