// internal/domain/campaign/stats.go
package campaign

import "context"

// Stats aggregates the whole ledger for reporting.
type Stats struct {
	TotalAttempts  int
	TotalSent      int
	TotalFailed    int
	SentByCategory map[Category]int
}

// BuildStats folds every ledger entry into lifetime send statistics.
func BuildStats(ctx context.Context, l Ledger) (*Stats, error) {
	s := &Stats{SentByCategory: make(map[Category]int)}
	err := l.Scan(ctx, func(e Entry) error {
		s.TotalAttempts++
		if e.Outcome == OutcomeSent {
			s.TotalSent++
			s.SentByCategory[e.Category]++
		} else {
			s.TotalFailed++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// SuccessRate is the percentage of attempts that were sent, 0 for an empty
// ledger.
func (s *Stats) SuccessRate() float64 {
	if s.TotalAttempts == 0 {
		return 0
	}
	return float64(s.TotalSent) / float64(s.TotalAttempts) * 100
}
