package domain

// QuestionStatistics is the sealed union of per-question results. Each
// question family has exactly one concrete variant; consumers switch on the
// concrete type (or on Summary().Type) to read family-specific fields.
//
// The unexported header method seals the union: only types embedding Header
// can satisfy it.
type QuestionStatistics interface {
	// Summary returns the fields common to every variant.
	Summary() Header
	header() *Header
}

// Header carries the fields every statistics variant has.
type Header struct {
	QuestionID string       `json:"questionId"`
	Type       QuestionType `json:"type"`
	// TotalResponses counts distinct sessions with at least one usable answer.
	TotalResponses int `json:"totalResponses"`
	// ProcessingError, when set, marks the rest of the record as a
	// best-effort neutral body that must not be treated as authoritative.
	ProcessingError string `json:"processingError,omitempty"`
}

// NewHeader builds the common header for a question.
func NewHeader(q QuestionDefinition) Header {
	return Header{QuestionID: q.ID, Type: q.Type}
}

// Summary returns a copy of the header.
func (h *Header) Summary() Header { return *h }

func (h *Header) header() *Header { return h }

// MarkFailed records msg as the processing error of stats and clears its
// respondent count. It is used on freshly built neutral values only.
func MarkFailed(stats QuestionStatistics, msg string) QuestionStatistics {
	h := stats.header()
	h.ProcessingError = msg
	h.TotalResponses = 0
	return stats
}

// EmptyStats is the neutral result for a question no aggregator can handle,
// such as one with an unknown type or an invalid definition.
type EmptyStats struct {
	Header
}

// WriteInGroup clusters near-identical write-in texts.
type WriteInGroup struct {
	// Representative is the most frequent text in the group.
	Representative string `json:"representative"`
	// Members lists every distinct text in the group, sorted.
	Members []string `json:"members"`
	// Count is the summed write-in count of all members.
	Count int `json:"count"`
}

// ChoiceStats summarizes singleChoice, multiChoice and dropdown questions.
type ChoiceStats struct {
	Header
	// Counts is keyed by option label or sentinel token.
	Counts map[string]int `json:"counts"`
	// Percentages is 100*count/TotalResponses per key of Counts.
	Percentages map[string]float64 `json:"percentages"`
	// WriteIns is keyed by the literal trimmed write-in text.
	WriteIns      map[string]int `json:"writeIns"`
	WriteInGroups []WriteInGroup `json:"writeInGroups,omitempty"`
}

// NPSBreakdown is the Net-Promoter segmentation of a set of scores.
type NPSBreakdown struct {
	Promoters  int `json:"promoters"`
	Passives   int `json:"passives"`
	Detractors int `json:"detractors"`
	Total      int `json:"total"`
	Score      int `json:"npsScore"`
}

// HistogramBin is one fixed-width bucket of a histogram. Every bin is
// half-open [Start, End) except the last, which is closed.
type HistogramBin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

// NumericStats summarizes rating, nps and slider questions.
type NumericStats struct {
	Header
	Values  []float64 `json:"values"`
	Average *float64  `json:"average"`
	Min     *float64  `json:"min"`
	Max     *float64  `json:"max"`
	// Counts is the discrete histogram keyed by rounded score. It is set for
	// rating and nps questions only.
	Counts map[string]int `json:"counts,omitempty"`
	// NPS is set for nps questions only.
	NPS *NPSBreakdown `json:"nps,omitempty"`
	// Histogram is set for slider questions only.
	Histogram []HistogramBin `json:"histogram,omitempty"`
}

// TextStats summarizes shortText and longText questions.
type TextStats struct {
	Header
	Responses []string `json:"responses"`
}

// MatrixRowStats summarizes one row of a matrix question.
type MatrixRowStats struct {
	Counts map[string]int `json:"counts"`
	// Total counts answers that selected at least one valid column in this row.
	Total int `json:"total"`
	// Average is only computed for rating matrices; nil otherwise or when no
	// selected column parsed as a number.
	Average *float64 `json:"average"`
}

// MatrixStats summarizes matrix questions.
type MatrixStats struct {
	Header
	Rows map[string]MatrixRowStats `json:"rows"`
}

// RankingItem holds the ranking statistics of one option.
type RankingItem struct {
	// AverageRank is the mean 1-based rank, nil if nobody ranked the option.
	AverageRank *float64 `json:"averageRank"`
	// RankCounts maps a 1-based rank to how often the option held it.
	RankCounts map[int]int `json:"rankCounts"`
	// Score is the Borda-like score: sum of (N - rank) per occurrence.
	Score int `json:"score"`
}

// RankingStats summarizes ranking questions.
type RankingStats struct {
	Header
	// OptionCount is N, the number of declared options.
	OptionCount int                    `json:"optionCount"`
	Items       map[string]RankingItem `json:"items"`
}

// MaxDiffStats summarizes best-worst scaling questions.
type MaxDiffStats struct {
	Header
	BestCounts  map[string]int `json:"bestCounts"`
	WorstCounts map[string]int `json:"worstCounts"`
}

// NetScores returns best minus worst counts per option.
func (s *MaxDiffStats) NetScores() map[string]int {
	net := make(map[string]int, len(s.BestCounts))
	for opt, n := range s.BestCounts {
		net[opt] += n
	}
	for opt, n := range s.WorstCounts {
		net[opt] -= n
	}
	return net
}

// ConjointStats summarizes conjoint questions.
type ConjointStats struct {
	Header
	// LevelCounts maps attribute name to chosen level to count.
	LevelCounts map[string]map[string]int `json:"levelCounts"`
}

// CardSortStats summarizes card sort questions.
type CardSortStats struct {
	Header
	// ByCard maps card label to category id to placement count.
	ByCard map[string]map[string]int `json:"cardPlacementsByCard"`
	// ByCategory is the transpose of ByCard.
	ByCategory map[string]map[string]int `json:"cardPlacementsByCategory"`
	// UserCategories are respondent-created categories, deduplicated by id.
	UserCategories []Category `json:"userCategories"`
}

// Point is a normalized click position; both coordinates lie in [0, 1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HeatmapStats summarizes heatmap questions.
type HeatmapStats struct {
	Header
	Clicks []Point `json:"clicks"`
}

var (
	_ QuestionStatistics = (*EmptyStats)(nil)
	_ QuestionStatistics = (*ChoiceStats)(nil)
	_ QuestionStatistics = (*NumericStats)(nil)
	_ QuestionStatistics = (*TextStats)(nil)
	_ QuestionStatistics = (*MatrixStats)(nil)
	_ QuestionStatistics = (*RankingStats)(nil)
	_ QuestionStatistics = (*MaxDiffStats)(nil)
	_ QuestionStatistics = (*ConjointStats)(nil)
	_ QuestionStatistics = (*CardSortStats)(nil)
	_ QuestionStatistics = (*HeatmapStats)(nil)
)
