// Package evals scores draft posts before they can be published. Scoring is
// deterministic regex/keyword heuristics, not an LLM judge: the gate sits in
// the agent's hot path and must be fast, free, and reproducible in tests.
package evals

// HookinessScore measures attention-grabbing potential. Each sub-score is in
// [1,5]; Total is their sum, range [5,25]. Reasoning is a one-line summary of
// which dimensions drove the score.
type HookinessScore struct {
	NewsHook    int    `json:"newsHook"`
	Specificity int    `json:"specificity"`
	Urgency     int    `json:"urgency"`
	HumanVoice  int    `json:"humanVoice"`
	ScrollStop  int    `json:"scrollStop"`
	Total       int    `json:"total"`
	Reasoning   string `json:"reasoning"`
}

// QualityScore measures content substance. Each sub-score is in [1,10];
// Total is their sum, range [5,50]. Reasoning is a one-line summary of which
// dimensions drove the score.
type QualityScore struct {
	ThesisClarity int    `json:"thesisClarity"`
	NewsDriven    int    `json:"newsDriven"`
	Actionable    int    `json:"actionable"`
	Engagement    int    `json:"engagement"`
	Originality   int    `json:"originality"`
	Total         int    `json:"total"`
	Reasoning     string `json:"reasoning"`
}

// UnifiedScore is the full verdict for one post. Total always equals
// Hookiness.Total + Quality.Total (range [10,75]). Values are immutable
// after Evaluate returns them.
type UnifiedScore struct {
	Post          string         `json:"post"`
	Hookiness     HookinessScore `json:"hookiness"`
	Quality       QualityScore   `json:"quality"`
	Total         int            `json:"total"`
	Passed        bool           `json:"passed"`
	FailureReason string         `json:"failureReason,omitempty"`
}

// Score maxima, fixed by the scoring scales.
const (
	MaxHookiness = 25
	MaxQuality   = 50
	MaxTotal     = 75
)
