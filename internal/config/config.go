package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

const (
	NewsProviderNewsAPI    = "newsapi"
	NewsProviderGoogleNews = "googlenews"

	ClassifierHuggingFace = "huggingface"
	ClassifierOpenAI      = "openai"
	ClassifierHeuristic   = "heuristic"
)

type Config struct {
	HTTPPort         string
	APIKey           string
	TelegramBotToken string
	RedisURL         string

	SentimentCacheTTL time.Duration
	WarmPollSecs      int

	NewsProvider    string
	NewsAPIKey      string
	CoinGeckoAPIKey string

	Classifier          string
	ClassifierMaxLength int
	HuggingFaceAPIKey   string
	HuggingFaceModel    string
	OpenAIAPIKey        string
	OpenAIModel         string

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		APIKey:            strings.TrimSpace(os.Getenv("API_KEY")),
		TelegramBotToken:  strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		RedisURL:          strings.TrimSpace(os.Getenv("REDIS_URL")),
		NewsAPIKey:        strings.TrimSpace(os.Getenv("NEWSAPI_KEY")),
		CoinGeckoAPIKey:   strings.TrimSpace(os.Getenv("COINGECKO_API_KEY")),
		HuggingFaceAPIKey: strings.TrimSpace(os.Getenv("HUGGINGFACE_API_KEY")),
		OpenAIAPIKey:      strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
	}

	cfg.HTTPPort = strings.TrimSpace(os.Getenv("HTTP_PORT"))
	if cfg.HTTPPort == "" {
		cfg.HTTPPort = "8080"
	}

	if cfg.TelegramBotToken == "" {
		log.Warn("TELEGRAM_BOT_TOKEN not set, bot will be disabled")
	}
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set, sentiment cache will be in-memory")
	}

	cfg.SentimentCacheTTL = time.Duration(positiveInt("SENTIMENT_CACHE_TTL_SECS", 600)) * time.Second
	cfg.WarmPollSecs = positiveInt("WARM_POLL_SECS", 0)
	cfg.ClassifierMaxLength = positiveInt("CLASSIFIER_MAX_LENGTH", 512)

	cfg.NewsProvider = strings.ToLower(strings.TrimSpace(os.Getenv("NEWS_PROVIDER")))
	switch cfg.NewsProvider {
	case "", NewsProviderNewsAPI:
		cfg.NewsProvider = NewsProviderNewsAPI
		if cfg.NewsAPIKey == "" {
			log.Warn("NEWSAPI_KEY not set, falling back to Google News RSS")
			cfg.NewsProvider = NewsProviderGoogleNews
		}
	case NewsProviderGoogleNews:
	default:
		log.Warn("unsupported NEWS_PROVIDER, defaulting to googlenews", "value", cfg.NewsProvider)
		cfg.NewsProvider = NewsProviderGoogleNews
	}

	if cfg.CoinGeckoAPIKey == "" {
		log.Warn("COINGECKO_API_KEY not set, using the keyless public rate limit")
	}

	cfg.HuggingFaceModel = strings.TrimSpace(os.Getenv("HUGGINGFACE_MODEL"))
	if cfg.HuggingFaceModel == "" {
		cfg.HuggingFaceModel = "ProsusAI/finbert"
	}
	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	cfg.Classifier = resolveClassifier(
		strings.ToLower(strings.TrimSpace(os.Getenv("CLASSIFIER"))),
		cfg.HuggingFaceAPIKey != "",
		cfg.OpenAIAPIKey != "",
	)

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg
}

// resolveClassifier honours an explicit choice when its credentials are
// present and otherwise prefers FinBERT, then OpenAI, then the keyword
// heuristic.
func resolveClassifier(requested string, hasHF, hasOpenAI bool) string {
	switch requested {
	case ClassifierHuggingFace:
		if hasHF {
			return ClassifierHuggingFace
		}
		log.Warn("CLASSIFIER=huggingface but HUGGINGFACE_API_KEY not set")
	case ClassifierOpenAI:
		if hasOpenAI {
			return ClassifierOpenAI
		}
		log.Warn("CLASSIFIER=openai but OPENAI_API_KEY not set")
	case ClassifierHeuristic:
		return ClassifierHeuristic
	case "":
	default:
		log.Warn("unsupported CLASSIFIER, choosing from available keys", "value", requested)
	}

	switch {
	case hasHF:
		return ClassifierHuggingFace
	case hasOpenAI:
		return ClassifierOpenAI
	default:
		log.Warn("no classifier API key set, using keyword heuristic")
		return ClassifierHeuristic
	}
}

func positiveInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Warn("invalid value, using default", "key", key, "value", v, "default", def)
	}
	return def
}

// ParseLogLevel maps LOG_LEVEL to a charmbracelet/log level, defaulting to
// info.
func ParseLogLevel(v string) log.Level {
	level, err := log.ParseLevel(v)
	if err != nil {
		return log.InfoLevel
	}
	return level
}
