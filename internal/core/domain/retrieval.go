package domain

// LocationKind discriminates the closed Location variant.
type LocationKind string

const (
	LocationUnknown LocationKind = "unknown"
	LocationPages   LocationKind = "pages"
	LocationTime    LocationKind = "time"
)

// Location is where a chunk sits inside its source document: a page range for
// paginated sources, a time range for transcribed audio, or unknown.
type Location struct {
	Kind         LocationKind `json:"kind"`
	PageStart    int          `json:"page_start,omitempty"`
	PageEnd      int          `json:"page_end,omitempty"`
	StartSeconds float64      `json:"start_seconds,omitempty"`
	EndSeconds   float64      `json:"end_seconds,omitempty"`
}

func PageRange(start, end int) Location {
	return Location{Kind: LocationPages, PageStart: start, PageEnd: end}
}

func TimeRange(startSeconds, endSeconds float64) Location {
	return Location{Kind: LocationTime, StartSeconds: startSeconds, EndSeconds: endSeconds}
}

// Chunk is a bounded span of ingested document text. Chunks are produced
// upstream and are read-only here.
type Chunk struct {
	ID         string   `json:"id"`
	DocumentID string   `json:"document_id"`
	Text       string   `json:"text"`
	Position   int      `json:"position"`
	Location   Location `json:"location"`
}

// ExtractedEntity is a bare name/type label as returned by the extraction
// collaborator, before it is attributed to a chunk.
type ExtractedEntity struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type EntityMention struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	ChunkID string `json:"chunk_id"`
}

// RetrievalResult is the merged, deduplicated output of one fan-out over all
// query variants. VariantsByChunk records which variant texts contributed each
// chunk id.
type RetrievalResult struct {
	Chunks          []Chunk
	Entities        []EntityMention
	VariantsByChunk map[string][]string
}

// Citation points from an answer back to one chunk that was shown to the
// generator.
type Citation struct {
	ChunkID    string `json:"chunk_id"`
	DocumentID string `json:"document_id"`
	Location   string `json:"location"`
	Excerpt    string `json:"excerpt"`
}

// AssembledContext is the bounded evidence block handed to the generator.
// Included lists exactly the chunks whose text appears in Text, and Citations
// is derived from Included only.
type AssembledContext struct {
	Text      string
	Included  []Chunk
	Citations []Citation
}
