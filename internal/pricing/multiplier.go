package pricing

import (
	"math"
	"time"
	_ "time/tzdata"
)

// Match is the outcome of evaluating the surcharge schedule
type Match struct {
	Multiplier float64 `json:"value"`
	Period     string  `json:"period,omitempty"`
	Badge      string  `json:"badge,omitempty"`
}

// NoMultiplier is the explicit "no period applies" outcome
var NoMultiplier = Match{Multiplier: 1}

// Matched reports whether a period produced m
func (m Match) Matched() bool {
	return m.Period != ""
}

// ResolveMultiplier returns the first active period covering now in the
// schedule's timezone. It never reads the clock; callers pass now.
func ResolveMultiplier(tm TimeMultiplierConfig, now time.Time) Match {
	if !tm.Enabled {
		return NoMultiplier
	}

	loc := time.UTC
	if tm.Timezone != "" {
		l, err := time.LoadLocation(tm.Timezone)
		if err != nil {
			return NoMultiplier
		}
		loc = l
	}

	local := now.In(loc)
	current := local.Format("15:04")
	day := int(local.Weekday())

	for _, p := range tm.Periods {
		if !p.Active || !coversDay(p.DaysOfWeek, day) {
			continue
		}
		if periodMatches(p, current) {
			return Match{Multiplier: p.Multiplier, Period: periodName(p), Badge: p.Badge}
		}
	}
	return NoMultiplier
}

// periodMatches compares zero-padded HH:MM strings, so lexical order is
// time order. Malformed periods never match.
func periodMatches(p TimePeriod, current string) bool {
	if !validClock(p.StartTime) || !validClock(p.EndTime) {
		return false
	}
	if math.IsNaN(p.Multiplier) || math.IsInf(p.Multiplier, 0) || p.Multiplier <= 0 {
		return false
	}

	if p.StartTime <= p.EndTime {
		return current >= p.StartTime && current < p.EndTime
	}
	// wraps midnight, e.g. 23:00-07:00
	return current >= p.StartTime || current < p.EndTime
}

func coversDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

func validClock(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	for _, i := range []int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	minute := int(s[3]-'0')*10 + int(s[4]-'0')
	return hour < 24 && minute < 60
}

func periodName(p TimePeriod) string {
	if p.Name != "" {
		return p.Name
	}
	return p.StartTime + "-" + p.EndTime
}
