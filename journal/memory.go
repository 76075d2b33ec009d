package journal

import "sync"

// Memory keeps records in slices. It backs report assembly after a run
// and doubles as the journal for tests.
type Memory struct {
	mu     sync.Mutex
	trades []TradeRecord
	equity []EquityPoint
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) RecordTrade(t TradeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, t)
	return nil
}

func (m *Memory) RecordEquity(e EquityPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.equity = append(m.equity, e)
	return nil
}

func (m *Memory) Trades() []TradeRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]TradeRecord, len(m.trades))
	copy(out, m.trades)
	return out
}

func (m *Memory) Equity() []EquityPoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]EquityPoint, len(m.equity))
	copy(out, m.equity)
	return out
}

func (m *Memory) Close() error { return nil }

// Tee fans records out to several journals, e.g. memory for the report
// plus SQLite for persistence. The first error wins.
type Tee []Journal

func (t Tee) RecordTrade(rec TradeRecord) error {
	for _, j := range t {
		if err := j.RecordTrade(rec); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) RecordEquity(rec EquityPoint) error {
	for _, j := range t {
		if err := j.RecordEquity(rec); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) Close() error {
	var first error
	for _, j := range t {
		if err := j.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
