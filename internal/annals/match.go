package annals

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// Mode selects how a record is matched to the target date.
type Mode string

const (
	ModeExact     Mode = "exact"     // same date, or nearest within Tolerance days
	ModeMonthDay  Mode = "monthday"  // same month and day in any year
	ModeYearShift Mode = "yearshift" // same date YearShift years earlier
	ModeDayOfYear Mode = "doy"       // nearest day of year; Tolerance > 0 bounds the distance
)

// DefaultYearShift matches the 500-year comparison.
const DefaultYearShift = 500

const (
	sourceLabel    = "조선왕조실록"
	maxExcerptRune = 100
)

// Options configure a lookup.
type Options struct {
	Mode         Mode
	LocationHint string
	Tolerance    int
	YearShift    int
}

// Match finds the best record for target according to opts.
func Match(records []Record, target time.Time, opts Options) (Record, bool) {
	switch opts.Mode {
	case ModeMonthDay:
		return matchMonthDay(records, target, opts.LocationHint)
	case ModeYearShift:
		shift := opts.YearShift
		if shift == 0 {
			shift = DefaultYearShift
		}
		return matchYearShift(records, target, shift, opts.LocationHint)
	case ModeDayOfYear:
		return matchDayOfYear(records, target, opts.Tolerance, opts.LocationHint)
	default:
		return matchExact(records, target, opts.LocationHint, opts.Tolerance)
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	// Unix seconds avoid Duration saturation across centuries.
	d := int((a.Unix() - b.Unix()) / 86400)
	if d < 0 {
		return -d
	}
	return d
}

func hintMatches(r Record, hint string) bool {
	hint = strings.ToLower(strings.TrimSpace(hint))
	loc := strings.ToLower(strings.TrimSpace(r.Location))
	return hint != "" && loc != "" && strings.Contains(loc, hint)
}

// preferred orders by location hint first, then by longer description.
func preferred(a, b Record, hint string) bool {
	ha, hb := hintMatches(a, hint), hintMatches(b, hint)
	if ha != hb {
		return ha
	}
	return utf8.RuneCountInString(a.Description) > utf8.RuneCountInString(b.Description)
}

func matchExact(records []Record, target time.Time, hint string, tolerance int) (Record, bool) {
	var same []Record
	for _, r := range records {
		if sameDay(r.Date, target) {
			same = append(same, r)
		}
	}
	if len(same) > 0 {
		for _, r := range same {
			if hintMatches(r, hint) {
				return r, true
			}
		}
		return same[0], true
	}

	if tolerance <= 0 {
		return Record{}, false
	}

	var candidates []Record
	for _, r := range records {
		if daysBetween(r.Date, target) <= tolerance {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return Record{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := daysBetween(candidates[i].Date, target), daysBetween(candidates[j].Date, target)
		if di != dj {
			return di < dj
		}
		return hintMatches(candidates[i], hint) && !hintMatches(candidates[j], hint)
	})
	return candidates[0], true
}

func best(candidates []Record, hint string) (Record, bool) {
	if len(candidates) == 0 {
		return Record{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return preferred(candidates[i], candidates[j], hint)
	})
	return candidates[0], true
}

func matchMonthDay(records []Record, target time.Time, hint string) (Record, bool) {
	var same []Record
	for _, r := range records {
		if r.Date.Month() == target.Month() && r.Date.Day() == target.Day() {
			same = append(same, r)
		}
	}
	return best(same, hint)
}

func matchYearShift(records []Record, target time.Time, shift int, hint string) (Record, bool) {
	shifted := time.Date(target.Year()-shift, target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	// Feb 29 shifted into a non-leap year has no counterpart.
	if shifted.Month() != target.Month() {
		return Record{}, false
	}
	var exact []Record
	for _, r := range records {
		if sameDay(r.Date, shifted) {
			exact = append(exact, r)
		}
	}
	return best(exact, hint)
}

func matchDayOfYear(records []Record, target time.Time, maxDiff int, hint string) (Record, bool) {
	targetDOY := target.YearDay()
	diff := func(r Record) int {
		d := r.Date.YearDay() - targetDOY
		if d < 0 {
			return -d
		}
		return d
	}

	var candidates []Record
	for _, r := range records {
		if maxDiff > 0 && diff(r) > maxDiff {
			continue
		}
		candidates = append(candidates, r)
	}
	if len(candidates) == 0 {
		return Record{}, false
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		di, dj := diff(candidates[i]), diff(candidates[j])
		if di != dj {
			return di < dj
		}
		return preferred(candidates[i], candidates[j], hint)
	})
	return candidates[0], true
}

// Summary renders a record as one line, truncating long excerpts.
func Summary(r Record) string {
	loc := ""
	if r.Location != "" {
		loc = ", " + r.Location
	}
	desc := strings.TrimSpace(r.Description)
	if desc == "" {
		desc = "기록 있음"
	}
	if utf8.RuneCountInString(desc) > maxExcerptRune {
		runes := []rune(desc)
		desc = string(runes[:maxExcerptRune-1]) + "…"
	}
	return fmt.Sprintf("%s: %s%s: %s", sourceLabel, r.Date.Format(time.DateOnly), loc, desc)
}

// FailureSummary renders a load failure so the message can still be posted.
func FailureSummary(err error) string {
	return fmt.Sprintf("%s: 불러오기 실패(%v)", sourceLabel, err)
}
