// Package extract recovers a single actionable date/time instant from free
// text, such as an interview invitation email.
package extract

import (
	"fmt"
	"sort"
	"time"
	"unicode"
)

// minTextLength is the minimum number of non-whitespace characters required
// before extraction is attempted.
const minTextLength = 5

// graceWindow tolerates candidates slightly in the past, for emails that
// arrive moments after the time they mention.
const graceWindow = time.Hour

// Candidate is one date/time expression found in the text.
type Candidate struct {
	Snippet string    // the matched expression
	Time    time.Time // zone-qualified instant
	Index   int       // byte offset of the match in the scanned text
}

// Extractor scans text for date/time expressions in a fixed local zone.
type Extractor struct {
	location *time.Location
}

// New creates an Extractor for the given IANA timezone string,
// e.g. "Asia/Kolkata".
func New(timezone string) (*Extractor, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return &Extractor{location: loc}, nil
}

// Location returns the extractor's local zone.
func (e *Extractor) Location() *time.Location {
	return e.location
}

// Extract returns the best date/time instant found in text, relative to now.
//
// Selection policy: candidates without an explicit zone are qualified with
// the local zone; candidates at or after now minus a one hour grace window
// are preferred, earliest first; if none survive, the first candidate in
// scan order is returned rather than nothing. The boolean is false when the
// text is too short or contains no recognizable expression.
//
// Extraction is deterministic: surviving candidates are ordered by instant,
// not by scan order.
func (e *Extractor) Extract(text string, now time.Time) (time.Time, bool) {
	if countNonSpace(text) < minTextLength {
		return time.Time{}, false
	}

	candidates := e.Candidates(text, now)
	if len(candidates) == 0 {
		return time.Time{}, false
	}

	cutoff := now.Add(-graceWindow)
	upcoming := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.Time.Before(cutoff) {
			upcoming = append(upcoming, c)
		}
	}

	if len(upcoming) == 0 {
		// A slightly-past date is still more useful than nothing.
		return candidates[0].Time, true
	}

	sort.Slice(upcoming, func(i, j int) bool {
		if upcoming[i].Time.Equal(upcoming[j].Time) {
			return upcoming[i].Index < upcoming[j].Index
		}
		return upcoming[i].Time.Before(upcoming[j].Time)
	})
	return upcoming[0].Time, true
}

// Candidates returns every date/time expression found in text, in scan
// order. Expressions overlapping an earlier, higher-priority match are
// suppressed so "25 March 2025" is not re-read as "March 2".
func (e *Extractor) Candidates(text string, now time.Time) []Candidate {
	// ASCII-only lowering: every rule keyword is ASCII, and full Unicode
	// lowering can change byte lengths, which would break the offsets used
	// to slice snippets out of the original text.
	lower := lowerASCII(text)

	var candidates []Candidate
	var claimed []span

	for _, rule := range rules {
		for _, m := range rule.re.FindAllStringSubmatchIndex(lower, -1) {
			s := span{start: m[0], end: m[1]}
			if s.overlapsAny(claimed) {
				continue
			}
			day, ok := rule.resolve(e.location, now, lower, m)
			if !ok {
				continue
			}

			snippetEnd := m[1]
			instant := day
			if hh, mm, tEnd, found := findTimeOfDay(lower, m[1]); found {
				instant = time.Date(day.Year(), day.Month(), day.Day(), hh, mm, 0, 0, e.location)
				s.end = tEnd
				snippetEnd = tEnd
			}

			claimed = append(claimed, s)
			candidates = append(candidates, Candidate{
				Snippet: text[m[0]:snippetEnd],
				Time:    instant,
				Index:   m[0],
			})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Index < candidates[j].Index
	})
	return candidates
}

type span struct {
	start, end int
}

func (s span) overlapsAny(others []span) bool {
	for _, o := range others {
		if s.start < o.end && o.start < s.end {
			return true
		}
	}
	return false
}

// lowerASCII lowers A-Z only, leaving every other byte untouched so the
// result is the same length as the input.
func lowerASCII(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

func countNonSpace(s string) int {
	n := 0
	for _, r := range s {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
