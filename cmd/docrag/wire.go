package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/docrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/docrag/internal/adapters/driven/blob/s3"
	"github.com/custodia-labs/docrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docrag/internal/adapters/driven/storage/sqlstore"
	vmemory "github.com/custodia-labs/docrag/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/docrag/internal/adapters/driven/vectorstore/qdrant"
	"github.com/custodia-labs/docrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/docrag/internal/core/domain"
	"github.com/custodia-labs/docrag/internal/core/ports/driven"
	"github.com/custodia-labs/docrag/internal/core/ports/driving"
	"github.com/custodia-labs/docrag/internal/core/services"
	"github.com/custodia-labs/docrag/internal/extractors"
	"github.com/custodia-labs/docrag/internal/logger"
	"github.com/custodia-labs/docrag/internal/metrics"
	"github.com/custodia-labs/docrag/internal/postprocessors/chunker"
)

// openSettings opens the config file named by --config, or ~/.docrag/config.toml.
func openSettings(opts cli.Options) (driving.SettingsService, error) {
	var (
		store *file.ConfigStore
		err   error
	)
	if opts.ConfigPath != "" {
		store, err = file.OpenConfigFile(opts.ConfigPath)
	} else {
		store, err = file.NewConfigStore("")
	}
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	return services.NewSettingsService(store), nil
}

// records bundles the record store ports so memory and SQL stores are
// interchangeable.
type records struct {
	docs  driven.DocumentStore
	chats driven.ChatStore
	db    driven.DatabaseInspector
	close func()
}

func openRecords(ctx context.Context, settings *domain.AppSettings, ephemeral bool) (*records, error) {
	if ephemeral {
		docs, chats := memory.NewDocumentStore(), memory.NewChatStore()
		return &records{docs: docs, chats: chats, db: memory.NewInspector(docs, chats), close: func() {}}, nil
	}

	store, err := sqlstore.Open(ctx, sqlstore.Config{URL: settings.Database.URL, DataDir: settings.DataDir})
	if err != nil {
		return nil, err
	}
	return &records{docs: store, chats: store, db: store, close: func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing database: %v", err)
		}
	}}, nil
}

func openVectors(settings *domain.AppSettings, ephemeral bool) (driven.VectorIndex, error) {
	vs := settings.VectorStore
	dims := domain.EmbeddingDimensions(settings.Embedding.Model)
	if ephemeral || vs.Backend == domain.VectorBackendMemory {
		return vmemory.New(vs.Collection, dims), nil
	}
	return qdrant.New(qdrant.Config{
		URL:        vs.URL,
		APIKey:     vs.APIKey,
		Collection: vs.Collection,
		VectorName: settings.Embedding.Model,
		Dimensions: dims,
	})
}

func openBlobs(ctx context.Context, settings *domain.AppSettings, ephemeral bool) (driven.BlobStore, error) {
	b := settings.Blob
	if ephemeral || !b.IsConfigured() {
		if !ephemeral {
			logger.Warn("blob storage not configured, uploaded files are kept in memory")
		}
		return memory.NewBlobStore(), nil
	}
	return s3.New(ctx, s3.Config{
		Endpoint:       b.Endpoint,
		Region:         b.Region,
		Bucket:         b.Bucket,
		AccessKey:      b.AccessKey,
		SecretKey:      b.SecretKey,
		ForcePathStyle: b.ForcePathStyle,
	})
}

// buildServices wires every adapter into the core services.
func buildServices(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	settingsSvc, err := openSettings(opts)
	if err != nil {
		return nil, err
	}
	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	aiSvc, err := ai.Build(ctx, settings)
	if err != nil {
		return nil, err
	}
	for _, w := range aiSvc.Warnings {
		logger.Warn("%s", w)
	}

	recs, err := openRecords(ctx, settings, opts.Ephemeral)
	if err != nil {
		aiSvc.Close()
		return nil, err
	}
	cleanup := func() {
		recs.close()
		aiSvc.Close()
	}

	vectors, err := openVectors(settings, opts.Ephemeral)
	if err != nil {
		cleanup()
		return nil, err
	}
	blobs, err := openBlobs(ctx, settings, opts.Ephemeral)
	if err != nil {
		cleanup()
		return nil, err
	}
	prompts, err := file.NewPromptStore("")
	if err != nil {
		cleanup()
		return nil, err
	}
	ch, err := chunker.New(
		chunker.WithChunkSize(settings.Chunker.ChunkSize),
		chunker.WithOverlap(settings.Chunker.ChunkOverlap),
	)
	if err != nil {
		cleanup()
		return nil, err
	}

	embedder := services.NewEmbedder(aiSvc.EmbeddingOrUnconfigured(), services.WithEmbedderMetrics(m))
	retriever := services.NewRetriever(embedder, vectors)

	return &cli.Services{
		Documents: services.NewDocumentService(recs.docs, blobs, vectors, extractors.Default(), m),
		Ingest:    services.NewIngestService(recs.docs, vectors, embedder, ch, settings.Embedding.BatchSize, m),
		Chat: services.NewChatService(recs.chats, retriever, aiSvc.LLMOrUnconfigured(), prompts, services.ChatConfig{
			MaxTokens:   settings.LLM.MaxTokens,
			Temperature: settings.LLM.Temperature,
		}, m),
		Retrieval:   retriever,
		Diagnostics: services.NewDiagnosticsService(recs.db, vectors, aiSvc.Embedding, aiSvc.LLM),
		Settings:    settingsSvc,
		OwnerID:     settings.OwnerID,
		Metrics:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Close:       cleanup,
	}, nil
}
