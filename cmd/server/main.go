package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/edudocs/coursebot/internals/api"
	"github.com/edudocs/coursebot/internals/config"
	"github.com/edudocs/coursebot/internals/coursesrc"
	"github.com/edudocs/coursebot/internals/embeddings"
	"github.com/edudocs/coursebot/internals/ingest"
	"github.com/edudocs/coursebot/internals/llm"
	"github.com/edudocs/coursebot/internals/rag"
	"github.com/edudocs/coursebot/internals/session"
	"github.com/edudocs/coursebot/internals/vectorstore"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sys, err := buildSystem(ctx, cfg, log)
	if err != nil {
		log.Error("failed to build system", "err", err)
		os.Exit(1)
	}

	if err := ingestCourses(ctx, sys, cfg, log); err != nil {
		log.Error("course ingestion failed", "err", err)
		os.Exit(1)
	}

	server := api.NewServer(sys, log)
	srv := &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // queries may drive several model round trips
	}

	go func() {
		log.Info("api listening", "addr", cfg.Server.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}

func buildSystem(ctx context.Context, cfg *config.Config, log *slog.Logger) (*rag.System, error) {
	embedder := embeddings.NewOllama(cfg.Embeddings.BaseURL, cfg.Embeddings.Model, cfg.Embeddings.Dimensions)

	store, err := vectorstore.NewWeaviate(cfg.Weaviate.Host, cfg.Weaviate.Scheme, embedder, cfg.Search.MaxResults)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	var opts []llm.Option
	if cfg.Anthropic.Model != "" {
		opts = append(opts, llm.WithModel(anthropic.Model(cfg.Anthropic.Model)))
	}
	if cfg.Anthropic.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(cfg.Anthropic.MaxTokens))
	}
	gen := llm.NewClient(cfg.Anthropic.APIKey, log, opts...)

	sessions := session.NewManager(cfg.Session.MaxHistory)
	processor := ingest.NewProcessor(cfg.Search.ChunkSize, cfg.Search.ChunkOverlap)

	return rag.NewSystem(store, gen, sessions, processor, log), nil
}

func ingestCourses(ctx context.Context, sys *rag.System, cfg *config.Config, log *slog.Logger) error {
	if cfg.Courses.DocsDir != "" {
		courses, chunks, err := sys.AddCourses(ctx, coursesrc.NewFolder(cfg.Courses.DocsDir))
		if err != nil {
			return err
		}
		log.Info("loaded local courses", "dir", cfg.Courses.DocsDir, "courses", courses, "chunks", chunks)
	}

	if cfg.Courses.RepoURL != "" {
		factory := coursesrc.NewFactory(cfg.Courses.GitHubToken, cfg.Courses.GitLabToken)
		fetcher, err := factory.FetcherFor(ctx, cfg.Courses.RepoURL, cfg.Courses.RepoDir)
		if err != nil {
			return err
		}
		courses, chunks, err := sys.AddCourses(ctx, fetcher)
		if err != nil {
			return err
		}
		log.Info("loaded repo courses", "repo", cfg.Courses.RepoURL, "courses", courses, "chunks", chunks)
	}

	return nil
}
