package neo4j

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
)

const searchQuery = `
CALL db.index.fulltext.queryNodes($index, $query) YIELD node, score
WHERE size($scope) = 0 OR node.document_id IN $scope
RETURN node.id AS id,
       node.document_id AS document_id,
       node.text AS text,
       node.position AS position,
       node.location_kind AS location_kind,
       node.page_start AS page_start,
       node.page_end AS page_end,
       node.start_seconds AS start_seconds,
       node.end_seconds AS end_seconds
ORDER BY score DESC
LIMIT $top_k`

// Store retrieves chunks from a Neo4j graph through a full-text index
// over chunk nodes.
type Store struct {
	driver    neo4j.DriverWithContext
	indexName string
}

func NewStore(ctx context.Context, uri, user, password, indexName string) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}
	if indexName == "" {
		indexName = "chunk_text"
	}
	return &Store{driver: driver, indexName: indexName}, nil
}

func (s *Store) Search(ctx context.Context, queryText string, scope []string, topK int) ([]domain.Chunk, error) {
	sanitized := sanitizeLucene(queryText)
	if sanitized == "" {
		return nil, nil
	}
	if scope == nil {
		scope = []string{}
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, searchQuery, map[string]any{
			"index": s.indexName,
			"query": sanitized,
			"scope": scope,
			"top_k": topK,
		})
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("fulltext search: %w", err)
	}

	rows := records.([]*neo4j.Record)
	chunks := make([]domain.Chunk, 0, len(rows))
	for _, record := range rows {
		chunks = append(chunks, recordToChunk(record))
	}
	return chunks, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func recordToChunk(record *neo4j.Record) domain.Chunk {
	chunk := domain.Chunk{
		ID:         stringValue(record, "id"),
		DocumentID: stringValue(record, "document_id"),
		Text:       stringValue(record, "text"),
		Position:   int(intValue(record, "position")),
	}
	switch stringValue(record, "location_kind") {
	case "pages":
		chunk.Location = domain.PageRange(int(intValue(record, "page_start")), int(intValue(record, "page_end")))
	case "time":
		chunk.Location = domain.TimeRange(floatValue(record, "start_seconds"), floatValue(record, "end_seconds"))
	}
	return chunk
}

func stringValue(record *neo4j.Record, key string) string {
	if v, ok := record.Get(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func intValue(record *neo4j.Record, key string) int64 {
	if v, ok := record.Get(key); ok {
		if n, ok := v.(int64); ok {
			return n
		}
	}
	return 0
}

func floatValue(record *neo4j.Record, key string) float64 {
	if v, ok := record.Get(key); ok {
		switch n := v.(type) {
		case float64:
			return n
		case int64:
			return float64(n)
		}
	}
	return 0
}

// sanitizeLucene strips characters with special meaning in Lucene query
// syntax so raw user text cannot break the full-text call.
func sanitizeLucene(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch r {
		case '+', '-', '&', '|', '!', '(', ')', '{', '}', '[', ']', '^', '"', '~', '*', '?', ':', '\\', '/':
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
