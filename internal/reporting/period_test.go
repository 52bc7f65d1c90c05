package reporting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"umkmpos/internal/inventory"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod(" Weekly ")
	require.NoError(t, err)
	assert.Equal(t, PeriodWeekly, p)

	_, err = ParsePeriod("hourly")
	assert.ErrorIs(t, err, inventory.ErrValidation)
}

func TestResolveRange(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.ParseInLocation(DateLayout, s, time.UTC)
		require.NoError(t, err)
		return d
	}

	tests := []struct {
		name    string
		period  Period
		start   string
		end     string
		wantEnd string
	}{
		{"daily", PeriodDaily, "2024-02-10", "", "2024-02-10"},
		{"weekly", PeriodWeekly, "2024-02-26", "", "2024-03-03"},
		{"monthly leap february", PeriodMonthly, "2024-02-10", "", "2024-02-29"},
		{"monthly december", PeriodMonthly, "2023-12-05", "", "2023-12-31"},
		{"yearly", PeriodYearly, "2024-03-15", "", "2024-12-31"},
		{"explicit end wins", PeriodYearly, "2024-03-15", "2024-03-20", "2024-03-20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng, err := ResolveRange(tt.period, tt.start, tt.end, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, day(tt.start), rng.From)
			assert.Equal(t, day(tt.wantEnd), rng.LastDay)
			assert.Equal(t, day(tt.wantEnd).Add(24*time.Hour-time.Millisecond), rng.To)
		})
	}
}

func TestResolveRangeRejects(t *testing.T) {
	cases := map[string][3]string{
		"missing start":   {"daily", "", ""},
		"malformed start": {"daily", "10/02/2024", ""},
		"malformed end":   {"daily", "2024-02-10", "tomorrow"},
		"end before":      {"daily", "2024-02-10", "2024-02-09"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ResolveRange(Period(c[0]), c[1], c[2], time.UTC)
			assert.ErrorIs(t, err, inventory.ErrValidation)
		})
	}
}

func TestResolveRangeInLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)

	rng, err := ResolveRange(PeriodDaily, "2024-02-10", "", jakarta)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 9, 17, 0, 0, 0, time.UTC), rng.From.UTC())
}

func TestBucketStart(t *testing.T) {
	// 2024-03-06 is a Wednesday.
	ts := time.Date(2024, 3, 6, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "2024-03-06", BucketStart(PeriodDaily, ts, time.UTC).Format(DateLayout))
	assert.Equal(t, "2024-03-04", BucketStart(PeriodWeekly, ts, time.UTC).Format(DateLayout))
	assert.Equal(t, "2024-03-01", BucketStart(PeriodMonthly, ts, time.UTC).Format(DateLayout))
	assert.Equal(t, "2024-01-01", BucketStart(PeriodYearly, ts, time.UTC).Format(DateLayout))

	sunday := time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-04", BucketStart(PeriodWeekly, sunday, time.UTC).Format(DateLayout))

	// Late evening UTC is already the next day in UTC+7.
	jakarta := time.FixedZone("WIB", 7*60*60)
	assert.Equal(t, "2024-03-07", BucketStart(PeriodDaily, time.Date(2024, 3, 6, 20, 0, 0, 0, time.UTC), jakarta).Format(DateLayout))
}
