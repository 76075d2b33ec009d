package market

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalidInterval is returned for timeframe strings that are not a
// positive integer followed by one of the supported unit suffixes.
var ErrInvalidInterval = errors.New("invalid interval format")

// unit suffix -> duration of one unit
var intervalUnits = map[byte]time.Duration{
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
	'w': 7 * 24 * time.Hour,
}

// ParseInterval converts a timeframe string like "15m", "4h", "1d" or
// "1w" into a duration. Anything else fails with ErrInvalidInterval.
func ParseInterval(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, s)
	}

	unit, ok := intervalUnits[s[len(s)-1]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, s)
	}

	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInterval, s)
	}

	return time.Duration(n) * unit, nil
}
