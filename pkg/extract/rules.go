package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const monthPattern = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

const weekdayPattern = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`

// rule pairs a scan pattern with a resolver turning its submatches into a
// start-of-day instant. Time of day, when present, is attached separately by
// the caller.
type rule struct {
	re      *regexp.Regexp
	resolve func(loc *time.Location, now time.Time, text string, m []int) (time.Time, bool)
}

// rules are applied in priority order; earlier rules claim their span.
var rules = []rule{
	{
		// 2025-03-25
		re: regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`),
		resolve: func(loc *time.Location, now time.Time, text string, m []int) (time.Time, bool) {
			year := atoi(group(text, m, 1))
			month := atoi(group(text, m, 2))
			day := atoi(group(text, m, 3))
			return makeDate(loc, year, month, day)
		},
	},
	{
		// 25 March 2025, 3rd Jan, 25th of March
		re: regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?(?:\s+of)?\s+(` + monthPattern + `)\b\.?(?:,?\s*(\d{4})\b)?`),
		resolve: func(loc *time.Location, now time.Time, text string, m []int) (time.Time, bool) {
			day := atoi(group(text, m, 1))
			month := monthNumber(group(text, m, 2))
			return makeDateDefaultYear(loc, now, group(text, m, 3), month, day)
		},
	},
	{
		// March 25, 2025 / Mar 25
		re: regexp.MustCompile(`\b(` + monthPattern + `)\b\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s*(\d{4})\b)?`),
		resolve: func(loc *time.Location, now time.Time, text string, m []int) (time.Time, bool) {
			month := monthNumber(group(text, m, 1))
			day := atoi(group(text, m, 2))
			return makeDateDefaultYear(loc, now, group(text, m, 3), month, day)
		},
	},
	{
		// 25/03/2025, 25-03-25, 25.03.2025 (day first, as written locally)
		re: regexp.MustCompile(`\b(\d{1,2})[/.-](\d{1,2})[/.-](\d{2,4})\b`),
		resolve: func(loc *time.Location, now time.Time, text string, m []int) (time.Time, bool) {
			day := atoi(group(text, m, 1))
			month := atoi(group(text, m, 2))
			year := atoi(group(text, m, 3))
			if year < 100 {
				year += 2000
			}
			return makeDate(loc, year, month, day)
		},
	},
	{
		re: regexp.MustCompile(`\b(today|tomorrow)\b`),
		resolve: func(loc *time.Location, now time.Time, text string, m []int) (time.Time, bool) {
			base := startOfDay(now, loc)
			if group(text, m, 1) == "tomorrow" {
				base = base.AddDate(0, 0, 1)
			}
			return base, true
		},
	},
	{
		// in 3 days, in 2 weeks, in 1 month
		re: regexp.MustCompile(`\bin\s+(\d+)\s+(day|days|week|weeks|month|months)\b`),
		resolve: func(loc *time.Location, now time.Time, text string, m []int) (time.Time, bool) {
			amount := atoi(group(text, m, 1))
			base := startOfDay(now, loc)
			switch {
			case strings.HasPrefix(group(text, m, 2), "day"):
				return base.AddDate(0, 0, amount), true
			case strings.HasPrefix(group(text, m, 2), "week"):
				return base.AddDate(0, 0, amount*7), true
			default:
				return base.AddDate(0, amount, 0), true
			}
		},
	},
	{
		// next monday: always the coming week, even if today is monday
		re: regexp.MustCompile(`\bnext\s+(` + weekdayPattern + `)\b`),
		resolve: func(loc *time.Location, now time.Time, text string, m []int) (time.Time, bool) {
			return nextWeekday(now, loc, group(text, m, 1), false), true
		},
	},
	{
		// bare weekday: the nearest occurrence, today included
		re: regexp.MustCompile(`\b(` + weekdayPattern + `)\b`),
		resolve: func(loc *time.Location, now time.Time, text string, m []int) (time.Time, bool) {
			return nextWeekday(now, loc, group(text, m, 1), true), true
		},
	},
}

var weekdays = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// timeOfDayWindow bounds how far past a date expression a time expression
// may sit and still be attached to it.
const timeOfDayWindow = 32

var (
	timeWithMinutes  = regexp.MustCompile(`^[,\s]*(?:at|@|from)?\s*(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	timeWithMeridiem = regexp.MustCompile(`^[,\s]*(?:at|@|from)?\s*(\d{1,2})\s*(am|pm)\b`)
)

// findTimeOfDay looks for a time expression starting at offset from in text.
// It returns the hour, minute and the end offset of the match.
func findTimeOfDay(text string, from int) (int, int, int, bool) {
	if from >= len(text) {
		return 0, 0, 0, false
	}
	end := from + timeOfDayWindow
	if end > len(text) {
		end = len(text)
	}
	window := text[from:end]

	if m := timeWithMinutes.FindStringSubmatchIndex(window); m != nil {
		hour := atoi(group(window, m, 1))
		minute := atoi(group(window, m, 2))
		if hh, ok := clockHour(hour, group(window, m, 3)); ok && minute < 60 {
			return hh, minute, from + m[1], true
		}
	}
	if m := timeWithMeridiem.FindStringSubmatchIndex(window); m != nil {
		hour := atoi(group(window, m, 1))
		if hh, ok := clockHour(hour, group(window, m, 2)); ok {
			return hh, 0, from + m[1], true
		}
	}
	return 0, 0, 0, false
}

// clockHour converts an hour plus optional meridiem to 24h form.
func clockHour(hour int, meridiem string) (int, bool) {
	switch meridiem {
	case "am":
		if hour < 1 || hour > 12 {
			return 0, false
		}
		if hour == 12 {
			return 0, true
		}
		return hour, true
	case "pm":
		if hour < 1 || hour > 12 {
			return 0, false
		}
		if hour == 12 {
			return 12, true
		}
		return hour + 12, true
	default:
		if hour > 23 {
			return 0, false
		}
		return hour, true
	}
}

// makeDate builds a start-of-day instant, rejecting impossible dates that
// time.Date would silently normalize (e.g. 30 February).
func makeDate(loc *time.Location, year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

// makeDateDefaultYear resolves a date with an optional year string. When the
// year is absent the nearest occurrence at or after today is chosen.
func makeDateDefaultYear(loc *time.Location, now time.Time, yearStr string, month, day int) (time.Time, bool) {
	if yearStr != "" {
		return makeDate(loc, atoi(yearStr), month, day)
	}
	t, ok := makeDate(loc, now.In(loc).Year(), month, day)
	if !ok {
		return time.Time{}, false
	}
	if t.Before(startOfDay(now, loc)) {
		t, ok = makeDate(loc, now.In(loc).Year()+1, month, day)
	}
	return t, ok
}

func nextWeekday(now time.Time, loc *time.Location, name string, todayCounts bool) time.Time {
	target := weekdays[name]
	base := startOfDay(now, loc)
	daysUntil := int(target-base.Weekday()+7) % 7
	if daysUntil == 0 && !todayCounts {
		daysUntil = 7
	}
	return base.AddDate(0, 0, daysUntil)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func monthNumber(name string) int {
	if len(name) < 3 {
		return 0
	}
	switch name[:3] {
	case "jan":
		return 1
	case "feb":
		return 2
	case "mar":
		return 3
	case "apr":
		return 4
	case "may":
		return 5
	case "jun":
		return 6
	case "jul":
		return 7
	case "aug":
		return 8
	case "sep":
		return 9
	case "oct":
		return 10
	case "nov":
		return 11
	case "dec":
		return 12
	}
	return 0
}

func group(text string, m []int, i int) string {
	if 2*i+1 >= len(m) || m[2*i] < 0 {
		return ""
	}
	return text[m[2*i]:m[2*i+1]]
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
