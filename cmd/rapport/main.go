package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"rapport/internal/cache"
	"rapport/internal/chunker"
	"rapport/internal/config"
	"rapport/internal/domain"
	"rapport/internal/embedding/openai"
	"rapport/internal/evaluate"
	"rapport/internal/export"
	"rapport/internal/extract"
	"rapport/internal/generate"
	"rapport/internal/logger"
	"rapport/internal/quotes"
	"rapport/internal/retriever"
	"rapport/internal/service"
	"rapport/internal/summarizer"
	"rapport/internal/tui"
)

const summarySentences = 3

func main() {
	_ = godotenv.Load()

	var cfgPath, ticker string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/rapport/config.yaml if not provided)")
	flag.StringVar(&ticker, "ticker", "", "Stock ticker whose latest quote is hinted into every question")
	flag.Parse()
	inputs := flag.Args()
	if len(inputs) > 1 {
		fmt.Println("Usage: rapport [--config=config.yaml] [--ticker=SYM] <url | report-file>")
		fmt.Println("       rapport < report.txt   (pasted report on stdin)")
		os.Exit(1)
	}

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

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer zlog.Sync()

	src, err := resolveSource(inputs)
	if err != nil {
		log.Fatalf("failed to load report: %v", err)
	}

	svc, err := buildService(cfg, zlog)
	if err != nil {
		log.Fatalf("failed to assemble pipeline: %v", err)
	}

	exporter, err := export.NewStore(cfg.Output.Dir)
	if err != nil {
		log.Fatalf("failed to prepare output directory: %v", err)
	}

	quoteClient := quotes.NewClient(cfg.Quotes.BaseURL, time.Duration(cfg.Quotes.TimeoutSecs)*time.Second, zlog)

	sum := summarizer.NewFrequencySummarizer()
	summary, err := sum.Summarize(src.Text, summarySentences)
	if err != nil {
		summary = src.Identifier
	}

	m := tui.New(svc, exporter, quoteClient, src, summary, ticker)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
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

func resolveSource(inputs []string) (domain.Source, error) {
	if len(inputs) == 0 {
		text, err := io.ReadAll(os.Stdin)
		if err != nil {
			return domain.Source{}, err
		}
		return service.SourceFromText(string(text)), nil
	}

	input := inputs[0]
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		fetcher := extract.NewFetcher(0)
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		text, err := fetcher.FetchURL(ctx, input)
		if err != nil {
			return domain.Source{}, err
		}
		return service.SourceFromURL(input, text), nil
	}

	text, err := extract.FromFile(input)
	if err != nil {
		return domain.Source{}, err
	}
	return service.SourceFromFile(input, text), nil
}
