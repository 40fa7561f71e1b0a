package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"study-buddy/api/internal/config"
	"study-buddy/api/internal/llm"
	"study-buddy/api/internal/llm/gemini"
	"study-buddy/api/internal/llm/gpt"
	"study-buddy/api/internal/ocr"
	ocrgemini "study-buddy/api/internal/ocr/gemini"
	"study-buddy/api/internal/ocr/yandex"
	"study-buddy/api/internal/store"
	"study-buddy/api/internal/tutor"
)

// buildEngines registers every engine that has credentials.
func buildEngines(cfg *config.Config) *llm.Engines {
	engs := &llm.Engines{Preferred: cfg.LLMProvider}
	if cfg.OpenAIAPIKey != "" {
		engs.OpenAI = gpt.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	}
	if cfg.GeminiAPIKey != "" {
		engs.Gemini = gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	return engs
}

// buildOCR returns the configured recognizer, or nil when it has no credentials.
func buildOCR(cfg *config.Config) ocr.Recognizer {
	switch cfg.OCRProvider {
	case "gemini":
		if cfg.GeminiAPIKey != "" {
			return ocrgemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
		}
	default:
		if cfg.YCOAuthToken != "" && cfg.YCFolderID != "" {
			return yandex.New(cfg.YCOAuthToken, cfg.YCFolderID)
		}
	}
	log.Printf("ocr: %s is not configured, photo recognition disabled", cfg.OCRProvider)
	return nil
}

func buildSelector(cfg *config.Config) (*tutor.Selector, error) {
	if cfg.PersonasFile == "" {
		return tutor.NewSelector(), nil
	}
	personas, err := tutor.LoadPersonas(cfg.PersonasFile)
	if err != nil {
		return nil, err
	}
	log.Printf("personas: %d overrides from %s", len(personas), cfg.PersonasFile)
	return tutor.NewSelector(personas...), nil
}

// openStore connects to Postgres when a DSN is configured; nil means the app runs without storage.
func openStore(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	dsn := store.ResolveDSN(func(k string) string {
		if k == "DATABASE_URL" {
			return cfg.DatabaseURL
		}
		return os.Getenv(k)
	})
	if dsn == "" {
		log.Printf("db: no DATABASE_URL, storage disabled")
		return nil, nil
	}
	db, err := store.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Printf("db connected: %s", store.SafeDSNSummary(dsn))
	return db, nil
}
