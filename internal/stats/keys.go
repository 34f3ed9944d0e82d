package stats

import (
	"sort"

	"github.com/verte-zerg/keydrill/internal/model"
)

// RankFastestKeys returns the top N keys by mean response time, fastest
// first. Keys without timing data are skipped.
func RankFastestKeys(keys []model.KeyStat, n int) []model.KeyStat {
	return rankByLatency(keys, n, true)
}

// RankSlowestKeys returns the top N keys by mean response time, slowest
// first. Keys without timing data are skipped.
func RankSlowestKeys(keys []model.KeyStat, n int) []model.KeyStat {
	return rankByLatency(keys, n, false)
}

func rankByLatency(keys []model.KeyStat, n int, ascending bool) []model.KeyStat {
	if n <= 0 {
		return nil
	}
	timed := make([]model.KeyStat, 0, len(keys))
	for _, k := range keys {
		if k.LatencyCount > 0 {
			timed = append(timed, k)
		}
	}
	sort.Slice(timed, func(i, j int) bool {
		li := timed[i].AvgLatencyMs()
		lj := timed[j].AvgLatencyMs()
		if li == lj {
			return timed[i].Char < timed[j].Char
		}
		if ascending {
			return li < lj
		}
		return li > lj
	})
	return truncateKeys(timed, n)
}

// RankErrorProneKeys returns the top N keys by error count, descending.
// Keys without errors are skipped.
func RankErrorProneKeys(keys []model.KeyStat, n int) []model.KeyStat {
	if n <= 0 {
		return nil
	}
	erring := make([]model.KeyStat, 0, len(keys))
	for _, k := range keys {
		if k.Errors > 0 {
			erring = append(erring, k)
		}
	}
	sort.Slice(erring, func(i, j int) bool {
		if erring[i].Errors == erring[j].Errors {
			return erring[i].Char < erring[j].Char
		}
		return erring[i].Errors > erring[j].Errors
	})
	return truncateKeys(erring, n)
}

// RankAccurateKeys returns the top N keys by accuracy, descending. Keys
// never attempted are skipped.
func RankAccurateKeys(keys []model.KeyStat, n int) []model.KeyStat {
	if n <= 0 {
		return nil
	}
	attempted := make([]model.KeyStat, 0, len(keys))
	for _, k := range keys {
		if k.Attempts > 0 {
			attempted = append(attempted, k)
		}
	}
	sort.Slice(attempted, func(i, j int) bool {
		ai := attempted[i].Accuracy()
		aj := attempted[j].Accuracy()
		if ai == aj {
			return attempted[i].Char < attempted[j].Char
		}
		return ai > aj
	})
	return truncateKeys(attempted, n)
}

func truncateKeys(keys []model.KeyStat, n int) []model.KeyStat {
	if n > len(keys) {
		n = len(keys)
	}
	out := make([]model.KeyStat, n)
	copy(out, keys[:n])
	return out
}
