package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// exactLayouts are tried before fuzzy parsing. The extraction prompt asks
// for ISO dates, so this is the common path.
var exactLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"January 2, 2006",
	"January 2 2006",
	"2 January 2006",
}

var fuzzyParser = func() *when.Parser {
	p := when.New(nil)
	p.Add(en.All...)
	p.Add(common.All...)
	return p
}()

// ResolveRepaymentDate interprets a repayment-date string extracted from a
// transcript and pins it to the delivery clock (hour:minute in loc). The
// input may be a clean ISO date, a spoken form ("June 5th"), or prose
// around either; relative phrases are resolved against now. Any time-of-day
// component in the input is discarded.
func ResolveRepaymentDate(raw string, now time.Time, hour, minute int, loc *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range exactLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return pinClock(t, hour, minute, loc), nil
		}
	}

	res, err := fuzzyParser.Parse(trimmed, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", raw, err)
	}
	if res == nil {
		return time.Time{}, fmt.Errorf("no date found in %q", raw)
	}
	return pinClock(res.Time.In(loc), hour, minute, loc), nil
}

func pinClock(t time.Time, hour, minute int, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, loc)
}
