// Package holiday computes the French public holidays of a given year,
// including the movable feasts that depend on the date of Easter.
package holiday

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-caltemp/internal/config"
)

// Holiday is a public holiday on a given calendar day.
// Values are recomputed on demand and never persisted.
type Holiday struct {
	// Date is the civil date formatted as YYYY-MM-DD.
	Date string `json:"date"`

	// Name is the display name (French).
	Name string `json:"name"`
}

// YearInfo summarizes the length of a calendar year.
type YearInfo struct {
	Year   int  `json:"year"`
	IsLeap bool `json:"isLeap"`
	Days   int  `json:"days"`
}

// fixedHoliday is a holiday pinned to the same month/day every year.
type fixedHoliday struct {
	month time.Month
	day   int
	name  string
}

// fixedHolidays are emitted first, in this exact order.
var fixedHolidays = []fixedHoliday{
	{time.January, 1, config.HolidayNewYear},
	{time.May, 1, config.HolidayLabourDay},
	{time.May, 8, config.HolidayVictoryDay},
	{time.July, 14, config.HolidayBastilleDay},
	{time.August, 15, config.HolidayAssumption},
	{time.November, 1, config.HolidayAllSaints},
	{time.November, 11, config.HolidayArmistice},
	{time.December, 25, config.HolidayChristmas},
}

// easterHolidays are offsets in days from Easter Sunday, emitted after the fixed ones.
var easterHolidays = []struct {
	offset int
	name   string
}{
	{config.EasterMondayOffset, config.HolidayEasterMonday},
	{config.AscensionOffset, config.HolidayAscension},
	{config.WhitMondayOffset, config.HolidayWhitMonday},
}

// Holidays returns the 11 public holidays of year: the 8 fixed ones in
// calendar order followed by Easter Monday, Ascension and Whit Monday.
// The result is not sorted by date.
func Holidays(year int) []Holiday {
	out := make([]Holiday, 0, len(fixedHolidays)+len(easterHolidays))

	for _, f := range fixedHolidays {
		out = append(out, Holiday{
			Date: formatCivil(year, f.month, f.day),
			Name: f.name,
		})
	}

	easter := EasterSunday(year)
	for _, e := range easterHolidays {
		d := easter.AddDate(0, 0, e.offset)
		out = append(out, Holiday{
			Date: formatCivil(d.Year(), d.Month(), d.Day()),
			Name: e.name,
		})
	}

	return out
}

// Easter returns the month and day of Easter Sunday in the Gregorian calendar
// using the Meeus/Jones/Butcher algorithm.
func Easter(year int) (time.Month, int) {
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
	return time.Month(month), day
}

// EasterSunday returns Easter Sunday of year as a UTC midnight.
// Day arithmetic on the result never crosses a DST transition.
func EasterSunday(year int) time.Time {
	month, day := Easter(year)
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Lookup returns the holiday falling on the calendar day of t, if any.
// Only the year, month and day of t are considered.
func Lookup(t time.Time) (Holiday, bool) {
	key := formatCivil(t.Year(), t.Month(), t.Day())
	for _, h := range Holidays(t.Year()) {
		if h.Date == key {
			return h, true
		}
	}
	return Holiday{}, false
}

// IsLeapYear reports whether year has 366 days in the Gregorian calendar.
func IsLeapYear(year int) bool {
	return (year%4 == 0 && year%100 != 0) || year%400 == 0
}

// YearDetails composes IsLeapYear with the resulting day count.
func YearDetails(year int) YearInfo {
	leap := IsLeapYear(year)
	days := config.DaysInYear
	if leap {
		days = config.DaysInLeapYear
	}
	return YearInfo{Year: year, IsLeap: leap, Days: days}
}

// formatCivil renders a date as YYYY-MM-DD without going through time.Format,
// which does not round-trip years outside 0..9999.
func formatCivil(year int, month time.Month, day int) string {
	return fmt.Sprintf(config.FormatCivilDate, year, int(month), day)
}
