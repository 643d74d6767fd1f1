package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/edudocs/coursebot/internals/config"
	"github.com/edudocs/coursebot/internals/embeddings"
	"github.com/edudocs/coursebot/internals/ingest"
	"github.com/edudocs/coursebot/internals/llm"
	"github.com/edudocs/coursebot/internals/rag"
	"github.com/edudocs/coursebot/internals/session"
	slackhandler "github.com/edudocs/coursebot/internals/slack"
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
	if !cfg.Slack.Enabled {
		log.Error("slack is not enabled in the config")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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
	sys := rag.NewSystem(store, gen, sessions, processor, log)

	handler, err := slackhandler.NewHandler(cfg.Slack.BotToken, cfg.Slack.AppToken, sys, log)
	if err != nil {
		log.Error("failed to create slack handler", "err", err)
		os.Exit(1)
	}

	log.Info("slackbot starting")
	if err := handler.Run(ctx); err != nil {
		log.Error("handler exited with error", "err", err)
		os.Exit(1)
	}
}
