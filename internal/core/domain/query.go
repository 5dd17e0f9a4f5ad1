package domain

// QueryCategory is the closed set of question kinds the classifier can produce.
type QueryCategory string

const (
	CategoryGreeting       QueryCategory = "greeting"
	CategoryIdentity       QueryCategory = "identity"
	CategoryAcknowledgment QueryCategory = "acknowledgment"
	CategoryFarewell       QueryCategory = "farewell"
	CategoryMeta           QueryCategory = "meta"
	CategoryVague          QueryCategory = "vague"
	CategoryFactual        QueryCategory = "factual"
	CategoryAnalytical     QueryCategory = "analytical"
	CategorySummary        QueryCategory = "summary"
	CategoryComparison     QueryCategory = "comparison"
	CategoryList           QueryCategory = "list"
	CategoryEntity         QueryCategory = "entity"
	CategoryDate           QueryCategory = "date"
	CategoryDocumentList   QueryCategory = "document_list"
	CategoryGeneral        QueryCategory = "general"
)

// RoutingStrategy is the top-level decision of how a query is answered.
type RoutingStrategy string

const (
	RouteDirectReply RoutingStrategy = "direct_reply"
	RouteClarify     RoutingStrategy = "clarify"
	RouteRetrieve    RoutingStrategy = "retrieve"
)

type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Query is the immutable per-request input: the question text, an optional
// document scope, and the prior conversation turns.
type Query struct {
	Text          string
	DocumentScope []string
	History       []Turn
}

type VariantOrigin string

const (
	VariantOriginal  VariantOrigin = "original"
	VariantGenerated VariantOrigin = "generated"
)

// QueryVariant is one retrieval phrasing of a query. The original phrasing is
// always carried alongside any generated paraphrases.
type QueryVariant struct {
	Text   string        `json:"text"`
	Origin VariantOrigin `json:"origin"`
}

// CorpusStats is the light corpus summary used for routing and direct replies.
type CorpusStats struct {
	Documents int `json:"documents"`
	Entities  int `json:"entities"`
}

// DocumentInfo is a registry listing entry.
type DocumentInfo struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
}
