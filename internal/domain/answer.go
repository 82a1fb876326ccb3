package domain

// RawAnswerRecord is one respondent session's answer to one question, as
// handed over by whatever storage layer collected it.
//
// Value is deliberately loose: it may be a plain string, a delimited string,
// a string holding a JSON array or object, or an already decoded composite
// ([]any, map[string]any, numbers). The normalizer turns it into the shape a
// question type expects.
type RawAnswerRecord struct {
	SessionID  string `json:"sessionId"`
	QuestionID string `json:"questionId"`
	Value      any    `json:"value"`
	// OtherText is the write-in text supplied alongside the Other sentinel.
	OtherText string `json:"otherText,omitempty"`
}

// AggregationResult is the engine's complete output for one survey.
type AggregationResult struct {
	// PerQuestion holds exactly one entry for every supplied question id.
	PerQuestion map[string]QuestionStatistics `json:"perQuestion"`

	// OverallTotalRespondents counts distinct session ids across all records,
	// whether or not they produced a usable answer.
	OverallTotalRespondents int `json:"overallTotalRespondents"`
}

// Failed returns the ids of questions whose statistics carry a processing
// error, in no particular order.
func (r AggregationResult) Failed() []string {
	var ids []string
	for id, stats := range r.PerQuestion {
		if stats.Summary().ProcessingError != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
