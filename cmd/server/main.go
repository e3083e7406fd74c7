package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/nexahq/nexa-server/internal/cache"
	"github.com/nexahq/nexa-server/internal/cache/memory"
	"github.com/nexahq/nexa-server/internal/chain"
	"github.com/nexahq/nexa-server/internal/config"
	"github.com/nexahq/nexa-server/internal/enrich"
	"github.com/nexahq/nexa-server/internal/httpapi"
	"github.com/nexahq/nexa-server/internal/llm"
	"github.com/nexahq/nexa-server/internal/llm/anthropic"
	"github.com/nexahq/nexa-server/internal/llm/ollama"
	"github.com/nexahq/nexa-server/internal/llm/openai"
	"github.com/nexahq/nexa-server/internal/llm/openrouter"
	"github.com/nexahq/nexa-server/internal/metrics"
	"github.com/nexahq/nexa-server/internal/provider"
	"github.com/nexahq/nexa-server/internal/provider/bing"
	"github.com/nexahq/nexa-server/internal/provider/dailymotion"
	"github.com/nexahq/nexa-server/internal/provider/duckduckgo"
	"github.com/nexahq/nexa-server/internal/provider/googlenews"
	"github.com/nexahq/nexa-server/internal/provider/hackernews"
	"github.com/nexahq/nexa-server/internal/provider/invidious"
	"github.com/nexahq/nexa-server/internal/provider/reddit"
	"github.com/nexahq/nexa-server/internal/provider/serpapi"
	"github.com/nexahq/nexa-server/internal/provider/serper"
	"github.com/nexahq/nexa-server/internal/provider/tavily"
	"github.com/nexahq/nexa-server/internal/provider/wikipedia"
	"github.com/nexahq/nexa-server/internal/ratelimit"
	"github.com/nexahq/nexa-server/internal/service"
	"github.com/nexahq/nexa-server/internal/tts"
	"github.com/nexahq/nexa-server/internal/tts/elevenlabs"
	"github.com/nexahq/nexa-server/internal/tts/playht"
)

func main() {
	// .env опционален, в проде переменные приходят из окружения
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	m := metrics.New()

	var responseCache cache.Cache
	if cfg.Cache.Type == "memory" {
		memCache := memory.New()
		defer memCache.Stop()
		responseCache = memCache
	}

	chainCfg := chain.Config{AttemptTimeout: cfg.Timeouts.Provider}

	// платные провайдеры: первый непустой побеждает
	webChain := chain.New(chainCfg, []provider.Provider{
		tavily.New(tavily.Config{APIKey: cfg.Providers.Tavily.APIKey, BaseURL: cfg.Providers.Tavily.BaseURL}, logger),
		serper.New(serper.Config{APIKey: cfg.Providers.Serper.APIKey, BaseURL: cfg.Providers.Serper.BaseURL}, logger),
		serpapi.New(serpapi.Config{APIKey: cfg.Providers.SerpAPI.APIKey, BaseURL: cfg.Providers.SerpAPI.BaseURL}, logger),
		bing.New(bing.Config{APIKey: cfg.Providers.Bing.APIKey, BaseURL: cfg.Providers.Bing.BaseURL}, logger),
	}, logger, m)

	// бесплатные источники без ключей, сливаются merge-режимом
	freeChain := chain.New(chainCfg, []provider.Provider{
		wikipedia.New(wikipedia.Config{}, logger),
		hackernews.New(hackernews.Config{}, logger),
		googlenews.New(googlenews.Config{}, logger),
	}, logger, m)

	newsChain := chain.New(chainCfg, []provider.Provider{
		hackernews.New(hackernews.Config{}, logger),
		googlenews.New(googlenews.Config{}, logger),
	}, logger, m)

	redditChain := chain.New(chainCfg, []provider.Provider{
		reddit.New(reddit.Config{
			ClientID:     cfg.Providers.Reddit.ClientID,
			ClientSecret: cfg.Providers.Reddit.ClientSecret,
			Username:     cfg.Providers.Reddit.Username,
			Password:     cfg.Providers.Reddit.Password,
		}, logger),
	}, logger, m)

	socialChain := chain.New(chainCfg, []provider.Provider{
		duckduckgo.New(duckduckgo.Config{Site: "twitter.com"}, logger),
		duckduckgo.New(duckduckgo.Config{Site: "linkedin.com"}, logger),
		duckduckgo.New(duckduckgo.Config{Site: "instagram.com"}, logger),
	}, logger, m)

	invidiousClient := invidious.New(invidious.Config{}, logger)
	videoChain := chain.New(chainCfg, []provider.Provider{
		invidiousClient,
		dailymotion.New(dailymotion.Config{}, logger),
	}, logger, m)

	enricher := enrich.New(enrich.Config{
		MaxItems:    cfg.Enrich.MaxItems,
		Timeout:     cfg.Enrich.Timeout,
		ProxyBase:   cfg.Enrich.ProxyBase,
		Placeholder: cfg.Enrich.Placeholder,
	}, logger, m)

	searchSvc := service.NewSearchService(service.SearchDeps{
		Web:      webChain,
		Free:     freeChain,
		News:     newsChain,
		Reddit:   redditChain,
		Social:   socialChain,
		Enricher: enricher,
		Cache:    responseCache,
		Logger:   logger,
		Metrics:  m,
		Config: service.SearchConfig{
			CacheTTL: cfg.Cache.TTL,
			Total:    cfg.Timeouts.Total,
		},
	})

	summarizeSvc := service.NewSummarizeService(service.SummarizeDeps{
		Search: searchSvc,
		Clients: []llm.Client{
			openrouter.New(openrouter.Config{
				APIKey:  cfg.LLM.OpenRouter.APIKey,
				Model:   cfg.LLM.OpenRouter.Model,
				BaseURL: cfg.LLM.OpenRouter.BaseURL,
			}, logger),
			openai.New(openai.Config{
				APIKey:  cfg.LLM.OpenAI.APIKey,
				Model:   cfg.LLM.OpenAI.Model,
				BaseURL: cfg.LLM.OpenAI.BaseURL,
			}, logger),
			anthropic.New(anthropic.Config{
				APIKey:  cfg.LLM.Anthropic.APIKey,
				Model:   cfg.LLM.Anthropic.Model,
				BaseURL: cfg.LLM.Anthropic.BaseURL,
			}, logger),
			ollama.New(ollama.Config{
				BaseURL: cfg.LLM.Ollama.BaseURL,
				Model:   cfg.LLM.Ollama.Model,
			}, logger),
		},
		Logger:  logger,
		Metrics: m,
	})

	videoSvc := service.NewVideoService(service.VideoDeps{
		Chain:    videoChain,
		Trending: invidiousClient,
		Logger:   logger,
		Metrics:  m,
	})

	voiceSvc := service.NewVoiceService(service.VoiceDeps{
		Speakers: []tts.Speaker{
			elevenlabs.New(elevenlabs.Config{
				APIKey:  cfg.TTS.ElevenLabs.APIKey,
				VoiceID: cfg.TTS.ElevenLabs.VoiceID,
			}, logger),
			playht.New(playht.Config{
				APIKey: cfg.TTS.PlayHT.APIKey,
				UserID: cfg.TTS.PlayHT.UserID,
			}, logger),
		},
		Logger:  logger,
		Metrics: m,
	})

	router := httpapi.NewRouter(httpapi.Deps{
		Search:    searchSvc,
		Summarize: summarizeSvc,
		Videos:    videoSvc,
		Page:      service.NewPageService(logger),
		Voice:     voiceSvc,
		Limiter:   ratelimit.New(ratelimit.Config{RequestsPerMinute: cfg.RateLimit.RequestsPerMinute}),
		Logger:    logger,
		Metrics:   m,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
