package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dkozyrev/corpusqa/internal/config"
	"github.com/dkozyrev/corpusqa/internal/core/ports"
	"github.com/dkozyrev/corpusqa/internal/core/usecase"
	eventsnats "github.com/dkozyrev/corpusqa/internal/infrastructure/events/nats"
	"github.com/dkozyrev/corpusqa/internal/infrastructure/knowledge/memstore"
	storeneo4j "github.com/dkozyrev/corpusqa/internal/infrastructure/knowledge/neo4j"
	"github.com/dkozyrev/corpusqa/internal/infrastructure/llm/ollama"
	"github.com/dkozyrev/corpusqa/internal/infrastructure/registry/postgres"
	"github.com/dkozyrev/corpusqa/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config

	Pipeline ports.AnswerPipeline
	Registry ports.CorpusRegistry

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, observer resilience.CallObserver) (*App, error) {
	executor := resilience.NewExecutor(resilience.DefaultPolicy())
	if observer != nil {
		executor.SetObserver(observer)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	registry := postgres.NewCorpusRegistry(db)

	llm := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaRPS, executor)
	extractor := ollama.NewEntityExtractor(llm)

	var store ports.KnowledgeStore
	var closeStore func()
	switch cfg.KnowledgeBackend {
	case "memory":
		store = memstore.New()
		closeStore = func() {}
	default:
		graph, err := storeneo4j.NewStore(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, cfg.Neo4jIndex)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init knowledge store: %w", err)
		}
		store = graph
		closeStore = func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = graph.Close(closeCtx)
		}
	}

	var scorer ports.AnswerScorer
	if cfg.EvalMode == "model" {
		scorer = ollama.NewScorer(llm, 20*time.Second)
	} else {
		scorer = usecase.NewHeuristicScorer()
	}

	var events ports.AnswerEventPublisher
	var closeEvents func()
	if cfg.NATSEnabled {
		publisher, err := eventsnats.New(cfg.NATSURL, cfg.NATSSubject, eventsnats.Options{Executor: executor})
		if err != nil {
			closeStore()
			_ = db.Close()
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		events = publisher
		closeEvents = publisher.Close
	} else {
		closeEvents = func() {}
	}

	expander := usecase.NewExpander(llm, cfg.MaxVariants, time.Duration(cfg.ExpandTimeoutSeconds)*time.Second)
	retriever := usecase.NewRetriever(store, extractor, time.Duration(cfg.RetrieveTimeoutSeconds)*time.Second)
	generator := usecase.NewGenerator(llm, time.Duration(cfg.GenerateTimeoutSeconds)*time.Second, 1024)
	evaluator := usecase.NewEvaluator(scorer, cfg.EvalThreshold)

	pipeline := usecase.NewPipeline(expander, retriever, generator, evaluator, registry, events, usecase.PipelineConfig{
		MaxAttempts:     cfg.MaxAttempts,
		TopK:            cfg.TopK,
		TopKStep:        cfg.TopKStep,
		MaxContextChars: cfg.MaxContextChars,
	})

	return &App{
		Config:   cfg,
		Pipeline: pipeline,
		Registry: registry,

		closeFn: func() {
			closeEvents()
			closeStore()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
