package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCorpusRegistryStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	registry := NewCorpusRegistry(db)
	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"documents", "entities"}).AddRow(12, 340))

	stats, err := registry.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Documents != 12 || stats.Entities != 340 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCorpusRegistryStatsPropagatesError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	registry := NewCorpusRegistry(db)
	mock.ExpectQuery("SELECT").
		WillReturnError(errors.New("connection refused"))

	if _, err := registry.Stats(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestCorpusRegistryListDocuments(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()

	registry := NewCorpusRegistry(db)
	rows := sqlmock.NewRows([]string{"id", "filename"}).
		AddRow("doc-1", "report.pdf").
		AddRow("doc-2", "interview.mp3")

	mock.ExpectQuery("FROM documents").
		WillReturnRows(rows)

	docs, err := registry.ListDocuments(context.Background())
	if err != nil {
		t.Fatalf("ListDocuments() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != "doc-1" || docs[1].Filename != "interview.mp3" {
		t.Fatalf("unexpected documents %+v", docs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
