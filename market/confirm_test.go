package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotBars(start time.Time, interval time.Duration, n int) []Bar {
	bars := make([]Bar, n)
	for i := range bars {
		bars[i] = Bar{Time: start.Add(time.Duration(i) * interval), Open: 1, High: 1, Low: 1, Close: 1}
	}
	return bars
}

func TestSelectConfirmedDropsInProgressBar(t *testing.T) {
	interval := 15 * time.Minute
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	raw := slotBars(start, interval, 4) // last bar opens 10:45

	// now exactly at the 10:45 boundary: the 10:45 bar just opened and is
	// still accumulating.
	now := start.Add(3 * interval)

	got, stale, err := SelectConfirmed(raw, interval, now, 10)
	require.NoError(t, err)
	assert.False(t, stale)
	require.Len(t, got, 3)
	assert.Equal(t, raw[2].Time, got[len(got)-1].Time)
}

func TestSelectConfirmedKeepsJustClosedBar(t *testing.T) {
	interval := 15 * time.Minute
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	raw := slotBars(start, interval, 4) // last bar opens 10:45

	// One millisecond before 11:00 the current slot is still 10:45, so
	// the 10:45 bar is the in-progress bar and must be dropped.
	now := start.Add(4*interval - time.Millisecond)
	got, stale, err := SelectConfirmed(raw, interval, now, 10)
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Len(t, got, 3)

	// At exactly 11:00 the 10:45 bar's own close instant has passed and
	// the feed has not yet surfaced the 11:00 bar: keep the full set.
	now = start.Add(4 * interval)
	got, stale, err = SelectConfirmed(raw, interval, now, 10)
	require.NoError(t, err)
	assert.False(t, stale)
	require.Len(t, got, 4)
	assert.Equal(t, raw[3].Time, got[len(got)-1].Time)
}

func TestSelectConfirmedStaleFeed(t *testing.T) {
	interval := 15 * time.Minute
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	raw := slotBars(start, interval, 4)

	// Two full intervals past the last bar: data is lagging.
	now := start.Add(6 * interval)

	got, stale, err := SelectConfirmed(raw, interval, now, 10)
	require.NoError(t, err)
	assert.True(t, stale)
	assert.Len(t, got, 4)
}

func TestSelectConfirmedLookbackTrim(t *testing.T) {
	interval := time.Hour
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	raw := slotBars(start, interval, 10)
	now := start.Add(10 * interval)

	got, _, err := SelectConfirmed(raw, interval, now, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, raw[9].Time, got[2].Time)
}

func TestSelectConfirmedInsufficientData(t *testing.T) {
	interval := time.Hour
	_, _, err := SelectConfirmed([]Bar{{}}, interval, time.Now(), 5)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
