package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func nightSchedule() TimeMultiplierConfig {
	return TimeMultiplierConfig{
		Enabled:  true,
		Timezone: "UTC",
		Periods: []TimePeriod{
			{
				Name:       "Night",
				Active:     true,
				DaysOfWeek: []int{0, 1, 2, 3, 4, 5, 6},
				StartTime:  "23:00",
				EndTime:    "07:00",
				Multiplier: 1.5,
				Badge:      "After Hours",
			},
		},
	}
}

func at(hour, minute int) time.Time {
	// 2026-02-10 is a Tuesday
	return time.Date(2026, 2, 10, hour, minute, 0, 0, time.UTC)
}

func TestResolveMultiplier_WrappingPeriod(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want float64
	}{
		{"late evening", at(23, 30), 1.5},
		{"early morning", at(3, 0), 1.5},
		{"start boundary inclusive", at(23, 0), 1.5},
		{"end boundary exclusive", at(7, 0), 1},
		{"midday", at(12, 0), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveMultiplier(nightSchedule(), tt.now)
			assert.Equal(t, tt.want, got.Multiplier)
		})
	}
}

func TestResolveMultiplier_NoMatchIsExplicit(t *testing.T) {
	got := ResolveMultiplier(nightSchedule(), at(12, 0))

	assert.Equal(t, NoMultiplier, got)
	assert.False(t, got.Matched())
}

func TestResolveMultiplier_NonWrappingPeriod(t *testing.T) {
	tm := TimeMultiplierConfig{
		Enabled: true,
		Periods: []TimePeriod{
			{Name: "Evening", Active: true, DaysOfWeek: []int{2}, StartTime: "18:00", EndTime: "22:00", Multiplier: 1.2},
		},
	}

	assert.Equal(t, 1.2, ResolveMultiplier(tm, at(18, 0)).Multiplier)
	assert.Equal(t, 1.2, ResolveMultiplier(tm, at(21, 59)).Multiplier)
	assert.Equal(t, 1.0, ResolveMultiplier(tm, at(22, 0)).Multiplier)
	assert.Equal(t, 1.0, ResolveMultiplier(tm, at(17, 59)).Multiplier)
}

func TestResolveMultiplier_Disabled(t *testing.T) {
	tm := nightSchedule()
	tm.Enabled = false

	assert.Equal(t, NoMultiplier, ResolveMultiplier(tm, at(23, 30)))
}

func TestResolveMultiplier_SkipsInactiveAndOtherDays(t *testing.T) {
	tm := TimeMultiplierConfig{
		Enabled: true,
		Periods: []TimePeriod{
			{Name: "Inactive", Active: false, DaysOfWeek: []int{2}, StartTime: "00:00", EndTime: "23:59", Multiplier: 3},
			{Name: "Weekend", Active: true, DaysOfWeek: []int{0, 6}, StartTime: "00:00", EndTime: "23:59", Multiplier: 2},
			{Name: "Tuesday", Active: true, DaysOfWeek: []int{2}, StartTime: "00:00", EndTime: "23:59", Multiplier: 1.1},
		},
	}

	got := ResolveMultiplier(tm, at(12, 0))

	assert.Equal(t, "Tuesday", got.Period)
	assert.Equal(t, 1.1, got.Multiplier)
}

func TestResolveMultiplier_FirstMatchWins(t *testing.T) {
	tm := TimeMultiplierConfig{
		Enabled: true,
		Periods: []TimePeriod{
			{Name: "Low", Active: true, DaysOfWeek: []int{2}, StartTime: "10:00", EndTime: "14:00", Multiplier: 1.1},
			{Name: "High", Active: true, DaysOfWeek: []int{2}, StartTime: "11:00", EndTime: "13:00", Multiplier: 2},
		},
	}

	assert.Equal(t, "Low", ResolveMultiplier(tm, at(12, 0)).Period)
}

func TestResolveMultiplier_MalformedPeriodsIgnored(t *testing.T) {
	tm := TimeMultiplierConfig{
		Enabled: true,
		Periods: []TimePeriod{
			{Name: "BadStart", Active: true, DaysOfWeek: []int{2}, StartTime: "9am", EndTime: "17:00", Multiplier: 3},
			{Name: "BadHour", Active: true, DaysOfWeek: []int{2}, StartTime: "25:00", EndTime: "17:00", Multiplier: 3},
			{Name: "Empty", Active: true, DaysOfWeek: []int{2}, Multiplier: 3},
			{Name: "ZeroMultiplier", Active: true, DaysOfWeek: []int{2}, StartTime: "00:00", EndTime: "23:59", Multiplier: 0},
			{Name: "NoDays", Active: true, StartTime: "00:00", EndTime: "23:59", Multiplier: 3},
			{Name: "Good", Active: true, DaysOfWeek: []int{2}, StartTime: "08:00", EndTime: "17:00", Multiplier: 1.3},
		},
	}

	got := ResolveMultiplier(tm, at(12, 0))

	assert.Equal(t, "Good", got.Period)
	assert.Equal(t, 1.3, got.Multiplier)
}

func TestResolveMultiplier_Timezone(t *testing.T) {
	tm := nightSchedule()
	tm.Timezone = "America/Los_Angeles"

	// 07:30 UTC is 23:30 the previous day in Los Angeles (PST)
	got := ResolveMultiplier(tm, at(7, 30))
	assert.Equal(t, 1.5, got.Multiplier)

	// 20:00 UTC is noon in Los Angeles
	got = ResolveMultiplier(tm, at(20, 0))
	assert.Equal(t, 1.0, got.Multiplier)
}

func TestResolveMultiplier_TimezoneShiftsWeekday(t *testing.T) {
	tm := TimeMultiplierConfig{
		Enabled:  true,
		Timezone: "America/Los_Angeles",
		Periods: []TimePeriod{
			{Name: "Monday", Active: true, DaysOfWeek: []int{1}, StartTime: "00:00", EndTime: "23:59", Multiplier: 1.4},
		},
	}

	// Tuesday 03:00 UTC is Monday 19:00 in Los Angeles
	assert.Equal(t, 1.4, ResolveMultiplier(tm, at(3, 0)).Multiplier)
}

func TestResolveMultiplier_UnknownTimezone(t *testing.T) {
	tm := nightSchedule()
	tm.Timezone = "Mars/Olympus_Mons"

	assert.Equal(t, NoMultiplier, ResolveMultiplier(tm, at(23, 30)))
}
