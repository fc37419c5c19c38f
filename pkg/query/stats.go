package query

import "time"

// Stats summarizes a run
type Stats struct {
	Total   int           // Number of queries evaluated
	Hits    int           // Queries whose answer was a hit
	Errors  int           // Queries rejected by validation
	PerKind map[Kind]int  // Queries evaluated per kind
	Workers int           // Workers used
	Elapsed time.Duration // Wall time of the run
}

func newStats(workers int) Stats {
	return Stats{PerKind: make(map[Kind]int), Workers: workers}
}

// add accounts for one result
func (s *Stats) add(r Result) {
	s.Total++
	s.PerKind[r.Kind]++
	if r.Err != nil {
		s.Errors++
		return
	}
	if r.Hit {
		s.Hits++
	}
}

// HitRate returns the fraction of evaluated queries that hit
func (s Stats) HitRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Total)
}
