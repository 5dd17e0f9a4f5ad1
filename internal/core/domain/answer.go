package domain

// Answer is one generated answer with its citations. Degraded marks answers
// built from a raw context excerpt after a generation failure; the evaluator
// never accepts a degraded answer as sufficient.
type Answer struct {
	Text      string          `json:"text"`
	Citations []Citation      `json:"citations"`
	Category  QueryCategory   `json:"category"`
	Strategy  RoutingStrategy `json:"strategy"`
	Degraded  bool            `json:"degraded,omitempty"`
}

// ScoreParts are the three independently scored facets of an answer.
type ScoreParts struct {
	Quality      float64 `json:"quality"`
	Completeness float64 `json:"completeness"`
	Relevance    float64 `json:"relevance"`
}

type EvaluationScore struct {
	Quality      float64 `json:"quality"`
	Completeness float64 `json:"completeness"`
	Relevance    float64 `json:"relevance"`
	Overall      float64 `json:"overall"`
	Sufficient   bool    `json:"sufficient"`
}

// Attempt is one immutable cycle of the feedback loop.
type Attempt struct {
	Index           int             `json:"index"`
	Variants        []QueryVariant  `json:"variants"`
	TopK            int             `json:"top_k"`
	Answer          Answer          `json:"answer"`
	Score           EvaluationScore `json:"score"`
	Entities        []EntityMention `json:"entities,omitempty"`
	RetrievedChunks int             `json:"retrieved_chunks"`
}

// PipelineResult is the only externally visible pipeline output.
type PipelineResult struct {
	Answer          Answer          `json:"answer"`
	Score           EvaluationScore `json:"score"`
	Entities        []EntityMention `json:"entities"`
	Category        QueryCategory   `json:"category"`
	Strategy        RoutingStrategy `json:"strategy"`
	Attempts        int             `json:"attempts"`
	RetrievedChunks int             `json:"retrieved_chunks"`
}

// AskRequest is the inbound call shape from the application layer.
type AskRequest struct {
	Question      string   `json:"question"`
	DocumentScope []string `json:"document_scope,omitempty"`
	History       []Turn   `json:"history,omitempty"`
}

// AnswerEvent is the audit record published after each completed ask.
type AnswerEvent struct {
	RequestID  string  `json:"request_id"`
	Category   string  `json:"category"`
	Strategy   string  `json:"strategy"`
	Attempts   int     `json:"attempts"`
	Sufficient bool    `json:"sufficient"`
	DurationMS float64 `json:"duration_ms"`
}
