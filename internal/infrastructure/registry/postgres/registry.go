package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
)

// CorpusRegistry reads corpus metadata from Postgres: how many documents
// and entities the corpus holds, and which documents exist. Ingestion
// writes these tables; this service only reads them.
type CorpusRegistry struct {
	db *sql.DB
}

func NewCorpusRegistry(db *sql.DB) *CorpusRegistry {
	return &CorpusRegistry{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *CorpusRegistry) Stats(ctx context.Context) (domain.CorpusStats, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT
	(SELECT COUNT(*) FROM documents),
	(SELECT COUNT(*) FROM entities)
`)

	var stats domain.CorpusStats
	if err := row.Scan(&stats.Documents, &stats.Entities); err != nil {
		return domain.CorpusStats{}, fmt.Errorf("scan corpus stats: %w", err)
	}
	return stats, nil
}

func (r *CorpusRegistry) ListDocuments(ctx context.Context) ([]domain.DocumentInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, filename
FROM documents
ORDER BY created_at DESC
`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.DocumentInfo
	for rows.Next() {
		var doc domain.DocumentInfo
		if err := rows.Scan(&doc.ID, &doc.Filename); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}
