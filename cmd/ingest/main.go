package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/edudocs/coursebot/internals/config"
	"github.com/edudocs/coursebot/internals/coursesrc"
	"github.com/edudocs/coursebot/internals/embeddings"
	"github.com/edudocs/coursebot/internals/ingest"
	"github.com/edudocs/coursebot/internals/vectorstore"
)

// One-shot loader: parses course documents and writes them to the vector
// store without starting any serving surface.
func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	configPath := flag.String("config", "config.yaml", "path to config file")
	clear := flag.Bool("clear", false, "drop all ingested data before loading")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	embedder := embeddings.NewOllama(cfg.Embeddings.BaseURL, cfg.Embeddings.Model, cfg.Embeddings.Dimensions)
	store, err := vectorstore.NewWeaviate(cfg.Weaviate.Host, cfg.Weaviate.Scheme, embedder, cfg.Search.MaxResults)
	if err != nil {
		log.Error("failed to create vector store", "err", err)
		os.Exit(1)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		log.Error("failed to ensure schema", "err", err)
		os.Exit(1)
	}
	if *clear {
		log.Info("clearing existing data")
		if err := store.Clear(ctx); err != nil {
			log.Error("failed to clear store", "err", err)
			os.Exit(1)
		}
	}

	var fetchers []coursesrc.Fetcher
	if cfg.Courses.DocsDir != "" {
		fetchers = append(fetchers, coursesrc.NewFolder(cfg.Courses.DocsDir))
	}
	if cfg.Courses.RepoURL != "" {
		factory := coursesrc.NewFactory(cfg.Courses.GitHubToken, cfg.Courses.GitLabToken)
		fetcher, err := factory.FetcherFor(ctx, cfg.Courses.RepoURL, cfg.Courses.RepoDir)
		if err != nil {
			log.Error("failed to resolve course repo", "err", err)
			os.Exit(1)
		}
		fetchers = append(fetchers, fetcher)
	}
	if len(fetchers) == 0 {
		log.Error("no course source configured (courses.docs_dir or courses.repo_url)")
		os.Exit(1)
	}

	processor := ingest.NewProcessor(cfg.Search.ChunkSize, cfg.Search.ChunkOverlap)
	loader := ingest.NewLoader(store, processor, log)

	totalCourses, totalChunks := 0, 0
	for _, fetcher := range fetchers {
		courses, chunks, err := loader.Load(ctx, fetcher)
		if err != nil {
			log.Error("ingestion failed", "err", err)
			os.Exit(1)
		}
		totalCourses += courses
		totalChunks += chunks
	}

	log.Info("ingestion complete", "courses", totalCourses, "chunks", totalChunks)
}
