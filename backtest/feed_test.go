package backtest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/cryptosim/market"
)

func TestSliceFeedReplaysInOrder(t *testing.T) {
	bars := []market.Bar{
		hourlyBar(0, 100, 101, 99, 100),
		hourlyBar(1, 100, 102, 99, 101),
	}
	f := NewSliceFeed(bars)

	for i := 0; i < 2; i++ {
		b, ok, err := f.Next()
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, bars[i].Time, b.Time)
	}

	_, ok, err := f.Next()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, f.Close())
}

func TestCSVFeedFiltersRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")

	content := "timestamp,open,high,low,close,volume\n"
	for i := 0; i < 5; i++ {
		ts := t0.Add(time.Duration(i) * time.Hour).UnixMilli()
		content += fmt.Sprintf("%d,100,101,99,100.5,%d\n", ts, i+1)
	}
	content += "garbage,row,here\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	from := t0.Add(1 * time.Hour)
	to := t0.Add(4 * time.Hour)

	feed, dropped, err := NewCSVFeed(path, from, to)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)

	var got []market.Bar
	for {
		b, ok, err := feed.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		got = append(got, b)
	}

	require.Len(t, got, 3) // hours 1, 2, 3: [from, to)
	assert.True(t, got[0].Time.Equal(from))
	assert.True(t, got[2].Time.Equal(t0.Add(3*time.Hour)))
}
