package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minuteBars builds n one-minute bars starting at start with a gently
// trending price and unit volume.
func minuteBars(start time.Time, n int) []Bar {
	bars := make([]Bar, n)
	for i := range bars {
		px := 100.0 + float64(i)
		bars[i] = Bar{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   px,
			High:   px + 0.5,
			Low:    px - 0.5,
			Close:  px + 0.25,
			Volume: 1,
		}
	}
	return bars
}

func TestResampleFifteenMinuteBucket(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := minuteBars(start, 15)

	out := Resample(bars, 15*time.Minute)
	require.Len(t, out, 1)

	b := out[0]
	assert.Equal(t, start, b.Time)
	assert.Equal(t, bars[0].Open, b.Open)
	assert.Equal(t, bars[14].Close, b.Close)
	assert.Equal(t, bars[14].High, b.High)
	assert.Equal(t, bars[0].Low, b.Low)
	assert.InDelta(t, 15.0, b.Volume, 1e-12)
}

func TestResampleIdempotentOnAlignedInput(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	hourly := Resample(minuteBars(start, 240), time.Hour)
	require.Len(t, hourly, 4)

	again := Resample(hourly, time.Hour)
	assert.Equal(t, hourly, again)
}

func TestResampleConservation(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 7, 0, 0, time.UTC) // unaligned start
	bars := minuteBars(start, 53)

	out := Resample(bars, 15*time.Minute)
	require.NotEmpty(t, out)

	var inVol, outVol float64
	for _, b := range bars {
		inVol += b.Volume
	}
	for _, b := range out {
		outVol += b.Volume
	}
	assert.InDelta(t, inVol, outVol, 1e-9)

	// Every source bar's range must sit inside its bucket's envelope.
	byBucket := map[time.Time]Bar{}
	for _, b := range out {
		byBucket[b.Time] = b
	}
	for _, src := range bars {
		ms := src.Time.UnixMilli() / (15 * 60 * 1000) * (15 * 60 * 1000)
		bucket, ok := byBucket[time.UnixMilli(ms).UTC()]
		require.True(t, ok)
		assert.GreaterOrEqual(t, bucket.High, src.High)
		assert.LessOrEqual(t, bucket.Low, src.Low)
	}
}

func TestResampleEmitsPartialTrailingBucket(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	bars := minuteBars(start, 20) // one full 15m bucket + 5 minutes

	out := Resample(bars, 15*time.Minute)
	require.Len(t, out, 2)
	assert.InDelta(t, 5.0, out[1].Volume, 1e-12)
	assert.Equal(t, bars[19].Close, out[1].Close)
}

func TestResampleEmptyInput(t *testing.T) {
	assert.Nil(t, Resample(nil, time.Hour))
}
