package market

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadCSV reads bar history rows:
//
//	timestamp_ms,open,high,low,close,volume
//
// A single header row ("timestamp,...") is allowed. Malformed or short
// rows are dropped, not fatal; the number of dropped rows is returned so
// callers can log it.
func LoadCSV(path string) (bars []Bar, dropped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return nil, 0, err
	}

	for i, row := range rows {
		if i == 0 && len(row) > 0 && !isNumeric(row[0]) {
			continue // header
		}
		b, ok := parseBarRow(row)
		if !ok {
			dropped++
			continue
		}
		bars = append(bars, b)
	}

	return bars, dropped, nil
}

func parseBarRow(row []string) (Bar, bool) {
	if len(row) < 6 {
		return Bar{}, false
	}

	ms, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
	if err != nil {
		return Bar{}, false
	}

	var v [5]float64
	for i := 0; i < 5; i++ {
		v[i], err = strconv.ParseFloat(strings.TrimSpace(row[i+1]), 64)
		if err != nil {
			return Bar{}, false
		}
	}

	return Bar{
		Time:   time.UnixMilli(ms).UTC(),
		Open:   v[0],
		High:   v[1],
		Low:    v[2],
		Close:  v[3],
		Volume: v[4],
	}, true
}

func isNumeric(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}
