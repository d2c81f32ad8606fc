package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"feedback-insights-go/internal/analyzer"
	"feedback-insights-go/internal/api"
	"feedback-insights-go/internal/batch"
	"feedback-insights-go/internal/logger"
	"feedback-insights-go/internal/retry"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "feedback-insights-go").Info("starting service")

	var provider analyzer.CompletionProvider
	if os.Getenv("USE_MOCK_LLM") == "true" {
		log.Info("mock LLM mode ON - provider returns a canned analysis")
		provider = &analyzer.StaticProvider{Content: analyzer.MockContent}
	} else {
		provider = analyzer.NewGatewayProvider(analyzer.ProviderConfig{
			GatewayURL: os.Getenv("LLM_GATEWAY_URL"),
			APIKey:     os.Getenv("LLM_API_KEY"),
			Model:      envOr("LLM_MODEL", "gpt-4o-mini"),
			Timeout:    envDuration("LLM_TIMEOUT_SEC", 15) * time.Second,
		})
	}

	client := analyzer.NewClient(provider)
	scheduler := batch.NewScheduler(client, retry.BatchPolicy())
	server := api.NewServer(client, scheduler)

	addr := fmt.Sprintf(":%s", envOr("PORT", "8080"))
	// WriteTimeout must outlast a worst-case 100-item batch: 20 chunks,
	// each up to two 15s attempts plus backoff, plus inter-chunk pacing
	// (~11 minutes wall time).
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envDuration(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n)
		}
	}
	return time.Duration(def)
}
