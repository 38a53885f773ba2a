package holiday_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-caltemp/internal/config"
	"github.com/tartampluch/go-caltemp/internal/holiday"
)

// TestEaster_KnownDates checks the algorithm against published Easter Sundays.
func TestEaster_KnownDates(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		day   int
	}{
		{1900, time.April, 15},
		{1943, time.April, 25}, // Latest possible date
		{1961, time.April, 2},
		{2000, time.April, 23},
		{2008, time.March, 23},
		{2019, time.April, 21},
		{2024, time.March, 31},
		{2025, time.April, 20},
		{2038, time.April, 25},
		{2285, time.March, 22}, // Earliest possible date
	}

	for _, tt := range tests {
		month, day := holiday.Easter(tt.year)
		assert.Equal(t, tt.month, month, "month for %d", tt.year)
		assert.Equal(t, tt.day, day, "day for %d", tt.year)
	}
}

func TestHolidays_2024(t *testing.T) {
	got := holiday.Holidays(2024)

	want := []holiday.Holiday{
		{Date: "2024-01-01", Name: config.HolidayNewYear},
		{Date: "2024-05-01", Name: config.HolidayLabourDay},
		{Date: "2024-05-08", Name: config.HolidayVictoryDay},
		{Date: "2024-07-14", Name: config.HolidayBastilleDay},
		{Date: "2024-08-15", Name: config.HolidayAssumption},
		{Date: "2024-11-01", Name: config.HolidayAllSaints},
		{Date: "2024-11-11", Name: config.HolidayArmistice},
		{Date: "2024-12-25", Name: config.HolidayChristmas},
		{Date: "2024-04-01", Name: config.HolidayEasterMonday},
		{Date: "2024-05-09", Name: config.HolidayAscension},
		{Date: "2024-05-20", Name: config.HolidayWhitMonday},
	}
	assert.Equal(t, want, got, "Fixed holidays first, then Easter-derived ones, unsorted")
}

// TestHolidays_EasterOffsets verifies the derived dates by day arithmetic for two centuries.
func TestHolidays_EasterOffsets(t *testing.T) {
	for year := 1900; year <= 2100; year++ {
		hs := holiday.Holidays(year)
		require.Len(t, hs, 11, "year %d", year)

		easter := holiday.EasterSunday(year)
		offsets := []int{config.EasterMondayOffset, config.AscensionOffset, config.WhitMondayOffset}

		for i, off := range offsets {
			d, err := time.Parse(config.DateFormatDay, hs[8+i].Date)
			require.NoError(t, err)
			diff := int(d.Sub(easter).Hours() / 24)
			assert.Equal(t, off, diff, "%s in %d", hs[8+i].Name, year)
		}
	}
}

// TestHolidays_IndependentOfLocalZone ensures DST in the process zone has no effect.
func TestHolidays_IndependentOfLocalZone(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata not available")
	}
	saved := time.Local
	time.Local = paris
	t.Cleanup(func() { time.Local = saved })

	// Easter 2024 falls on the night of the spring DST change.
	hs := holiday.Holidays(2024)
	assert.Equal(t, "2024-04-01", hs[8].Date)
}

func TestHolidays_ExtremeYears(t *testing.T) {
	for _, y := range []int{0, 1, 1582, 9999, 10000, 123456, -44} {
		assert.NotPanics(t, func() {
			hs := holiday.Holidays(y)
			assert.Len(t, hs, 11)
		}, "year %d", y)
	}

	assert.Equal(t, "10000-01-01", holiday.Holidays(10000)[0].Date)
}

func TestHolidays_ConcurrentCalls(t *testing.T) {
	var wg sync.WaitGroup
	for y := 2000; y < 2050; y++ {
		wg.Add(1)
		go func(year int) {
			defer wg.Done()
			assert.Len(t, holiday.Holidays(year), 11)
		}(y)
	}
	wg.Wait()
}

func TestLookup(t *testing.T) {
	h, ok := holiday.Lookup(time.Date(2025, 6, 9, 18, 30, 0, 0, time.Local))
	require.True(t, ok)
	assert.Equal(t, config.HolidayWhitMonday, h.Name)

	_, ok = holiday.Lookup(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestIsLeapYear(t *testing.T) {
	tests := []struct {
		year int
		want bool
	}{
		{2000, true},
		{1900, false},
		{2024, true},
		{2023, false},
		{2100, false},
		{2400, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, holiday.IsLeapYear(tt.year), "year %d", tt.year)
	}
}

func TestYearDetails(t *testing.T) {
	assert.Equal(t, holiday.YearInfo{Year: 2024, IsLeap: true, Days: 366}, holiday.YearDetails(2024))
	assert.Equal(t, holiday.YearInfo{Year: 2023, IsLeap: false, Days: 365}, holiday.YearDetails(2023))
}
