package plans

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPeriod(t *testing.T) {
	base := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), NextPeriod(Monthly, base))
	assert.Equal(t, time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC), NextPeriod(Quarterly, base))
	assert.Equal(t, time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC), NextPeriod(Annual, base))
}

func TestProration(t *testing.T) {
	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expires := started.AddDate(0, 1, 0)

	tests := []struct {
		name       string
		now        time.Time
		wantCredit int
		wantDue    int
	}{
		{
			name:       "halfway through period credits half",
			now:        started.Add(expires.Sub(started) / 2),
			wantCredit: 4995,
			wantDue:    25990 - 4995,
		},
		{
			name:       "period fully elapsed credits nothing",
			now:        expires,
			wantCredit: 0,
			wantDue:    25990,
		},
		{
			name:       "period just started credits full price",
			now:        started,
			wantCredit: 9990,
			wantDue:    25990 - 9990,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			credit, due := Proration(Monthly, Quarterly, started, expires, tt.now)
			assert.Equal(t, tt.wantCredit, credit)
			assert.Equal(t, tt.wantDue, due)
		})
	}
}

func TestProrationNeverNegative(t *testing.T) {
	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expires := started.AddDate(1, 0, 0)

	// Annual credit larger than the monthly price must clamp to zero.
	_, due := Proration(Annual, Monthly, started, expires, started)
	assert.Equal(t, 0, due)
}

func TestCatalog(t *testing.T) {
	all := All()
	require.Len(t, all, 3)
	assert.Equal(t, 9990, all[0].Price)
	assert.Equal(t, 25990, all[1].Price)
	assert.Equal(t, 89990, all[2].Price)
	assert.True(t, Level(Annual) > Level(Quarterly))
	assert.True(t, Level(Quarterly) > Level(Monthly))

	_, ok := Get("WEEKLY")
	assert.False(t, ok)
}

func TestMonthlyRevenue(t *testing.T) {
	assert.InDelta(t, 9990, MonthlyRevenue(Monthly), 0.01)
	assert.InDelta(t, 25990.0/3, MonthlyRevenue(Quarterly), 0.01)
	assert.InDelta(t, 89990.0/12, MonthlyRevenue(Annual), 0.01)
}
