package trail

import (
	"fmt"
	"math"
)

type Date struct {
	Day   int `json:"day"`
	Month int `json:"month"`
	Year  int `json:"year"`
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// IsLeapYear uses the divisible-by-4 rule only. 1900 counts as a leap year
// here; saved journeys depend on that.
func IsLeapYear(year int) bool {
	return year%4 == 0
}

func DaysInMonth(month, year int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 30
	}
}

func (d Date) IsZero() bool {
	return d.Day == 0 && d.Month == 0 && d.Year == 0
}

// Normalize clamps the month into 1..12 and the day into the month.
func (d Date) Normalize() Date {
	d.Month = clamp(d.Month, 1, 12)
	d.Day = clamp(d.Day, 1, DaysInMonth(d.Month, d.Year))
	return d
}

// MaxAdvanceDays bounds a single Advance; larger spans are clamped to it.
const MaxAdvanceDays = math.MaxInt32

// daysPerCycle is four years under the divisible-by-4 rule. Any date lands
// on the same day and month exactly one cycle later.
const daysPerCycle = 4*365 + 1

// Advance moves the date forward by days, consuming the remainder of one
// month per step after skipping whole four-year cycles. Zero or negative
// days return d unchanged; more than MaxAdvanceDays is clamped.
func (d Date) Advance(days int) Date {
	if days <= 0 {
		return d
	}
	d = d.Normalize()
	remaining := min(days, MaxAdvanceDays)
	d.Year += 4 * (remaining / daysPerCycle)
	remaining %= daysPerCycle
	for remaining > 0 {
		inMonth := DaysInMonth(d.Month, d.Year)
		step := min(remaining, inMonth-d.Day+1)
		d.Day += step
		remaining -= step
		if d.Day > inMonth {
			d.Day = 1
			d.Month++
			if d.Month > 12 {
				d.Month = 1
				d.Year++
			}
		}
	}
	return d
}

func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Date) String() string {
	idx := (max(d.Month, 1) - 1) % 12
	return fmt.Sprintf("%s %d, %d", monthNames[idx], d.Day, d.Year)
}

func clamp(number, lo, hi int) int {
	if number < lo {
		return lo
	}
	if number > hi {
		return hi
	}
	return number
}
