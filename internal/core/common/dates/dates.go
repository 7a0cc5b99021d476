package dates

import "time"

// DateRange is an inclusive [Start, End] window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// MonthDayRatio carries the business-day and holiday counts of a reference
// month, against which partial windows are pro-rated.
type MonthDayRatio struct {
	BusinessDays int
	Holidays     int
}

// WorkedDays holds the day counts of a clipped window. Sundays belong to
// neither bucket.
type WorkedDays struct {
	BusinessDays int
	Holidays     int
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

// PreviousDayEnd returns the end of the calendar day before t. It is the
// canonical end date of a contract version whose successor starts at t.
func PreviousDayEnd(t time.Time) time.Time {
	return EndOfDay(t.AddDate(0, 0, -1))
}

func EndOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	firstOfNext := time.Date(y, m, 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return EndOfDay(firstOfNext.AddDate(0, 0, -1))
}

// InactivityDate is the date from which an employee with no open contract is
// considered inactive: end of the month following the contract end.
func InactivityDate(contractEnd time.Time) time.Time {
	return EndOfMonth(contractEnd.AddDate(0, 1, 0))
}

func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CountWorkedDays walks the window day by day. Sundays are skipped, public
// holidays are counted apart from plain business days.
func CountWorkedDays(start, end time.Time) WorkedDays {
	var counts WorkedDays
	for d := StartOfDay(start); !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Sunday {
			continue
		}
		if IsPublicHoliday(d) {
			counts.Holidays++
		} else {
			counts.BusinessDays++
		}
	}
	return counts
}

// IsPublicHoliday reports French public holidays, fixed and Easter-derived.
func IsPublicHoliday(t time.Time) bool {
	_, m, d := t.Date()
	switch {
	case m == time.January && d == 1,
		m == time.May && d == 1,
		m == time.May && d == 8,
		m == time.July && d == 14,
		m == time.August && d == 15,
		m == time.November && d == 1,
		m == time.November && d == 11,
		m == time.December && d == 25:
		return true
	}

	easter := easterSunday(t.Year(), t.Location())
	day := StartOfDay(t)
	return day.Equal(easter.AddDate(0, 0, 1)) || // Easter Monday
		day.Equal(easter.AddDate(0, 0, 39)) || // Ascension
		day.Equal(easter.AddDate(0, 0, 50)) // Whit Monday
}

// easterSunday uses the anonymous Gregorian computus.
func easterSunday(year int, loc *time.Location) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
}
