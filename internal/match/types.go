package match

import "context"

// Granularity selects which index tier a search queries.
type Granularity string

const (
	GranularitySegments Granularity = "segments"
	GranularityClusters Granularity = "clusters"
	GranularityBoth     Granularity = "both"
)

// Hit is one retrieval result from the semantic search collaborator.
type Hit struct {
	VideoPath   string   `json:"video_path"`
	Start       float64  `json:"start"`
	End         float64  `json:"end"`
	Description string   `json:"description"`
	Transcript  string   `json:"transcript,omitempty"`
	Score       float64  `json:"score"`
	People      []string `json:"people,omitempty"`
	Location    string   `json:"location,omitempty"`
}

// Searcher is the semantic search collaborator. It is treated as an
// opaque retrieval oracle returning hits ordered by relevance. The
// matcher only ever asks for the segments or clusters tier; "both" is
// expanded on the caller side.
type Searcher interface {
	Search(ctx context.Context, query string, limit int, granularity Granularity, project string) ([]Hit, error)
}

// TextGenerator is the generative-text collaborator used for candidate
// arbitration. Generate may fail transiently; the matcher owns retry.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Candidate is a retrieved footage segment under consideration for one
// scene. Candidates are ephemeral: built per match request, never
// persisted.
type Candidate struct {
	VideoPath      string
	TimestampStart float64
	TimestampEnd   float64
	Description    string
	Transcript     string
	Similarity     float64
	People         []string
	Location       string
}

// Duration returns the candidate clip length in seconds.
func (c Candidate) Duration() float64 {
	return c.TimestampEnd - c.TimestampStart
}

// Result is the selection verdict for one scene/candidate set, cached by
// content hash. A SelectedIndex of -1 records that no candidate was
// acceptable.
type Result struct {
	SelectedIndex int     `json:"selected_index"`
	Reasoning     string  `json:"reasoning"`
	Confidence    float64 `json:"confidence"`
	TailoredStart float64 `json:"tailored_start"`
	TailoredEnd   float64 `json:"tailored_end"`
}

// Decision pairs a selection verdict with the candidate it chose.
type Decision struct {
	Candidate     Candidate
	Index         int
	Reasoning     string
	Confidence    float64
	TailoredStart float64
	TailoredEnd   float64
}
