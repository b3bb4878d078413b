package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"rapport/internal/cache"
	"rapport/internal/chunker"
	"rapport/internal/config"
	"rapport/internal/domain"
	"rapport/internal/embedding/openai"
	"rapport/internal/evaluate"
	"rapport/internal/extract"
	"rapport/internal/generate"
	"rapport/internal/logger"
	"rapport/internal/retriever"
	"rapport/internal/server"
	"rapport/internal/service"
	"rapport/internal/session"
)

const sessionTTL = time.Hour

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/rapport/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.NewWithConsole(cfg.Log)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer zlog.Sync()

	svc, err := buildService(cfg, zlog)
	if err != nil {
		log.Fatalf("failed to assemble pipeline: %v", err)
	}

	resolver := &sourceResolver{fetcher: extract.NewFetcher(0)}
	sessions := session.NewStore(sessionTTL)

	srv := server.New(cfg.Server, svc, resolver, sessions, zlog)
	if err := srv.Run(); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

type sourceResolver struct {
	fetcher *extract.Fetcher
}

func (r *sourceResolver) FromURL(ctx context.Context, url string) (domain.Source, error) {
	text, err := r.fetcher.FetchURL(ctx, url)
	if err != nil {
		return domain.Source{}, err
	}
	return service.SourceFromURL(url, text), nil
}

func (r *sourceResolver) FromText(text string) domain.Source {
	return service.SourceFromText(text)
}

func buildService(cfg *config.AppConfig, zlog *zap.Logger) (*service.AnalysisService, error) {
	emb, err := openai.NewClient(openai.Config{
		BaseURL:     cfg.Embedder.BaseURL,
		APIKeyEnv:   cfg.Embedder.APIKeyEnv,
		Model:       cfg.Embedder.Model,
		Timeout:     time.Duration(cfg.Embedder.TimeoutSecs) * time.Second,
		MaxAttempts: cfg.Embedder.MaxAttempts,
		CacheSize:   cfg.Embedder.CacheSize,
	}, zlog)
	if err != nil {
		return nil, err
	}

	ch, err := chunker.NewWindowChunker(cfg.Chunker.MaxLength, *cfg.Chunker.Overlap)
	if err != nil {
		return nil, err
	}

	store, err := cache.NewStore(cfg.Cache.Dir, cfg.Cache.SchemeVersion, zlog)
	if err != nil {
		return nil, err
	}

	ret := retriever.New(emb, cfg.Retriever.TopK, cfg.Retriever.LexicalBonus, zlog)

	gen, err := generate.NewClient(generate.Config{
		BaseURL:   cfg.LLM.BaseURL,
		APIKeyEnv: cfg.LLM.APIKeyEnv,
		Model:     cfg.LLM.Model,
		Timeout:   time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	}, zlog)
	if err != nil {
		return nil, err
	}

	var eval domain.Evaluator
	if cfg.Evaluation.Enabled {
		backend, err := evaluate.NewLLMBackend(evaluate.LLMConfig{
			BaseURL:   cfg.LLM.BaseURL,
			APIKeyEnv: cfg.LLM.APIKeyEnv,
			Model:     cfg.Evaluation.Model,
			Timeout:   time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		eval = evaluate.New(backend, zlog)
	}

	return service.NewAnalysisService(ch, emb, store, ret, gen, eval, zlog), nil
}
