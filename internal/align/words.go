package align

// WordTimestamp is one transcribed word with its time range and the
// recognizer's confidence. Sequences handed to this package must be
// ordered by non-decreasing start time.
type WordTimestamp struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}
