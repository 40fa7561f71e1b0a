package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"study-buddy/api/internal/assistant"
	"study-buddy/api/internal/httpserver"
	"study-buddy/api/internal/llm"
	"study-buddy/api/internal/store"
	"study-buddy/api/internal/telegram"
	"study-buddy/api/internal/tutor"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot (webhook when WEBHOOK_URL is set, long polling otherwise)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireTelegram(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		selector, err := buildSelector(cfg)
		if err != nil {
			return err
		}
		engs := buildEngines(cfg)
		def, err := engs.Default()
		if err != nil {
			log.Printf("llm: %v, answering from offline rules unless the tutor server is reachable", err)
		}

		bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			return err
		}
		bot.Debug = false
		log.Printf("authorized as @%s", bot.Self.UserName)

		r := &telegram.Router{
			Bot:        bot,
			Sessions:   &telegram.Sessions{},
			Engines:    engs,
			EngManager: llm.NewManager(def),
			Selector:   selector,
			Responder:  tutor.NewResponder(),
			Delay:      cfg.FallbackDelay,
			OCR:        buildOCR(cfg),
			OCRLangs:   cfg.OCRLangs,
			Timeout:    cfg.RequestTimeout,
		}
		if ep := strings.TrimSpace(cfg.AssistantEndpoint); ep != "" {
			r.Remote = assistant.NewRemote(ep, cfg.RequestTimeout)
			log.Printf("assistant: remote endpoint %s", ep)
		}

		db, err := openStore(ctx, cfg)
		if err != nil {
			return err
		}
		if db != nil {
			defer db.Close()
			r.Scans = store.NewScanRepo(db)
			r.DB = db
		}

		mux := http.NewServeMux()
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, req *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})
		addr := "0.0.0.0:" + cfg.Port

		if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
			return runWebhook(ctx, addr, mux, bot, r, webhookURL)
		}
		return runPolling(ctx, addr, mux, bot, r)
	},
}

func runWebhook(ctx context.Context, addr string, mux *http.ServeMux, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string) error {
	path, err := telegram.SetWebhook(bot, baseURL)
	if err != nil {
		return err
	}
	updates := make(chan tgbotapi.Update, 100)
	mux.Handle("POST "+path, telegram.WebhookHandler(bot, updates))
	go telegram.Consume(ctx, updates, r.HandleUpdate)

	log.Printf("webhook listening on %s%s", addr, path)
	return httpserver.Run(ctx, addr, mux)
}

func runPolling(ctx context.Context, addr string, mux *http.ServeMux, bot *tgbotapi.BotAPI, r *telegram.Router) error {
	// polling needs no inbound HTTP; the server only answers health checks
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		log.Printf("delete webhook: %v", err)
	}
	go func() {
		if err := httpserver.Run(ctx, addr, mux); err != nil {
			log.Printf("health server: %v", err)
		}
	}()
	telegram.RunPolling(ctx, bot, r.HandleUpdate)
	return nil
}

func init() {
	rootCmd.AddCommand(botCmd)
}
