// Package derive holds the numeric helpers shared by several aggregators:
// summaries, percentages, fixed-bin histograms, Net-Promoter segmentation and
// Borda-like ranking scores.
package derive

import (
	"math"
	"slices"
	"strconv"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ahrav/go-tally/internal/domain"
)

// Summary is the mean and extremes of a sample; all fields are nil for an
// empty sample.
type Summary struct {
	Average *float64
	Min     *float64
	Max     *float64
}

// Summarize computes the mean, min and max of values.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	// stats only errors on empty input, which is handled above.
	mean, _ := stats.Mean(values)
	lo, _ := stats.Min(values)
	hi, _ := stats.Max(values)
	return Summary{Average: &mean, Min: &lo, Max: &hi}
}

// Mean returns the arithmetic mean of values, or nil when values is empty.
func Mean(values []float64) *float64 {
	return Summarize(values).Average
}

// RoundHalfUp rounds to the nearest integer with halves rounded towards
// positive infinity, so -12.5 becomes -12.
func RoundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// ScoreKey renders the rounded score used to key discrete histograms.
func ScoreKey(v float64) string {
	r := RoundHalfUp(v)
	if r == 0 {
		r = 0 // normalizes -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Percentage returns 100*part/total rounded to two decimals, or 0 when total
// is not positive.
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct, err := stats.Round(100*float64(part)/float64(total), 2)
	if err != nil {
		return 0
	}
	return pct
}

// Histogram sorts values into bins equal-width buckets spanning [lo, hi].
// Bins are half-open except the last, which also holds values equal to hi.
// Values outside [lo, hi] are discarded. When lo == hi the range collapses to
// a single bin holding every value. A nil slice is returned when bins is not
// positive or lo > hi.
func Histogram(values []float64, lo, hi float64, bins int) []domain.HistogramBin {
	if bins <= 0 || lo > hi || math.IsNaN(lo) || math.IsNaN(hi) {
		return nil
	}
	if lo == hi {
		return []domain.HistogramBin{{Start: lo, End: hi, Count: len(values)}}
	}

	inRange := make([]float64, 0, len(values))
	for _, v := range values {
		if v >= lo && v <= hi {
			inRange = append(inRange, v)
		}
	}
	slices.Sort(inRange)

	edges := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram treats the last divider as exclusive; nudge it so hi
	// itself lands in the final bin.
	dividers := slices.Clone(edges)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, inRange, nil)

	out := make([]domain.HistogramBin, bins)
	for i := range out {
		out[i] = domain.HistogramBin{
			Start: edges[i],
			End:   edges[i+1],
			Count: int(counts[i]),
		}
	}
	return out
}

// NPSThresholds configures Net-Promoter segmentation.
type NPSThresholds struct {
	// PromoterMin is the lowest score counted as a promoter.
	PromoterMin float64
	// DetractorMax is the highest score counted as a detractor.
	DetractorMax float64
}

// DefaultNPSThresholds returns the standard 0-10 scale cut-offs.
func DefaultNPSThresholds() NPSThresholds {
	return NPSThresholds{PromoterMin: 9, DetractorMax: 6}
}

// NPS segments scores into promoters, passives and detractors and computes
// round(100*(promoters-detractors)/total), or 0 for an empty sample.
func NPS(values []float64, th NPSThresholds) domain.NPSBreakdown {
	var b domain.NPSBreakdown
	for _, v := range values {
		switch {
		case v >= th.PromoterMin:
			b.Promoters++
		case v <= th.DetractorMax:
			b.Detractors++
		default:
			b.Passives++
		}
	}
	b.Total = b.Promoters + b.Passives + b.Detractors
	if b.Total > 0 {
		b.Score = int(RoundHalfUp(100 * float64(b.Promoters-b.Detractors) / float64(b.Total)))
	}
	return b
}

// BordaScore gives an item n-r points for every time it was ranked r (1-based)
// and sums them. Ranks beyond n contribute nothing.
func BordaScore(n int, rankCounts map[int]int) int {
	score := 0
	for rank, count := range rankCounts {
		if rank < 1 || rank > n {
			continue
		}
		score += (n - rank) * count
	}
	return score
}
