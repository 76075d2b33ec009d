package market

import "time"

// Resample aggregates fine-grained bars into fixed-width buckets of the
// target interval. Each source bar lands in the bucket starting at
// floor(unixMs / targetMs) * targetMs; consecutive bars sharing a bucket
// merge with open = first open, close = last close, high = max, low = min,
// volume = sum. The trailing bucket is emitted even when the source stream
// ends mid-bucket; the caller decides whether it is usable.
//
// Input must be sorted ascending by Time. Behavior on unsorted input is
// undefined.
func Resample(bars []Bar, target time.Duration) []Bar {
	if len(bars) == 0 {
		return nil
	}

	targetMs := target.Milliseconds()
	out := make([]Bar, 0, len(bars))

	for _, b := range bars {
		bucketMs := b.Time.UnixMilli() / targetMs * targetMs
		bucketStart := time.UnixMilli(bucketMs).UTC()

		if len(out) > 0 && out[len(out)-1].Time.Equal(bucketStart) {
			cur := &out[len(out)-1]
			if b.High > cur.High {
				cur.High = b.High
			}
			if b.Low < cur.Low {
				cur.Low = b.Low
			}
			cur.Close = b.Close
			cur.Volume += b.Volume
			continue
		}

		out = append(out, Bar{
			Time:   bucketStart,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		})
	}

	return out
}
