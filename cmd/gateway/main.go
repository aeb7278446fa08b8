package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"coordination-gateway/middleware/ratelimit"
	"coordination-gateway/middleware/ratelimit/domain"
	"coordination-gateway/middleware/ratelimit/infra"

	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	target, err := url.Parse(cfg.upstreamURL)
	if err != nil {
		log.Fatalf("invalid UPSTREAM_URL: %v", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("proxy error: %v", err)
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rdb *redis.Client
	if cfg.rateBackend == "redis" || cfg.statsEnabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.redisAddr,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancelPing()
		if err != nil {
			log.Fatalf("redis ping error: %v", err)
		}
	}

	var checker domain.Checker
	switch cfg.rateBackend {
	case "redis":
		checker = infra.NewSlidingWindow(rdb, cfg.rateLimitRPM)
	case "memory":
		mc := infra.NewMemoryChecker(cfg.rateLimitRPM)
		mc.StartJanitor(ctx)
		checker = mc
	default:
		log.Fatalf("unknown RATE_BACKEND %q (want redis or memory)", cfg.rateBackend)
	}

	var statsStore domain.StatsStore
	if cfg.statsEnabled {
		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.statsPrefix),
			infra.WithStatsTTL(cfg.statsTTL),
			infra.WithStatsBucket(cfg.statsBucket),
			infra.WithStatsTrackIdentities(cfg.statsTrackIdentities),
		)
	}

	h := http.Handler(proxy)
	h = ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Max:            cfg.concurrencyMax,
		RejectStatus:   http.StatusServiceUnavailable,
		AcquireTimeout: cfg.concurrencyTimeout,
		RetryAfter:     cfg.concurrencyRetryAfter,
	})(h)
	if cfg.rateEnabled {
		h = ratelimit.Middleware(ratelimit.Options{
			Checker:   checker,
			Stats:     statsStore,
			APIPrefix: cfg.apiPrefix,
			FailOpen:  cfg.failOpen,
		})(h)
	}

	srv := &http.Server{
		Addr:              cfg.listenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("gateway listening on %s -> %s", cfg.listenAddr, target)
	log.Printf("rate: enabled=%v backend=%s rpm=%d apiPrefix=%q failOpen=%v", cfg.rateEnabled, cfg.rateBackend, cfg.rateLimitRPM, cfg.apiPrefix, cfg.failOpen)
	log.Printf("stats: enabled=%v bucket=%q ttl=%s trackIdentities=%v", cfg.statsEnabled, cfg.statsBucket, cfg.statsTTL, cfg.statsTrackIdentities)
	log.Printf("concurrency: max=%d acquireTimeout=%s", cfg.concurrencyMax, cfg.concurrencyTimeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
}

type config struct {
	listenAddr  string
	upstreamURL string

	redisAddr     string
	redisPassword string
	redisDB       int

	rateEnabled  bool
	rateBackend  string // "redis" ou "memory"
	rateLimitRPM int
	apiPrefix    string
	failOpen     bool

	statsEnabled         bool
	statsPrefix          string
	statsTTL             time.Duration
	statsBucket          string
	statsTrackIdentities bool

	concurrencyMax        int
	concurrencyTimeout    time.Duration
	concurrencyRetryAfter time.Duration
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.listenAddr = getenvDefault("LISTEN_ADDR", ":8080")
	cfg.upstreamURL = os.Getenv("UPSTREAM_URL")

	cfg.redisAddr = getenvDefault("REDIS_ADDR", "localhost:6379")
	cfg.redisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.redisDB = getenvIntDefault("REDIS_DB", 0)

	cfg.rateEnabled = getenvBoolDefault("RATE_ENABLED", true)
	cfg.rateBackend = strings.ToLower(getenvDefault("RATE_BACKEND", "redis"))
	cfg.rateLimitRPM = getenvIntDefault("RATE_LIMIT_RPM", 60)
	cfg.apiPrefix = getenvDefault("RATE_API_PREFIX", "/api")
	cfg.failOpen = getenvBoolDefault("RATE_FAIL_OPEN", false)

	cfg.statsEnabled = getenvBoolDefault("RATE_STATS_ENABLED", false)
	cfg.statsPrefix = getenvDefault("RATE_STATS_PREFIX", "ratelimit:stats")
	cfg.statsTTL = getenvDurationDefault("RATE_STATS_TTL", 24*time.Hour)
	cfg.statsBucket = getenvDefault("RATE_STATS_BUCKET", "minute")
	cfg.statsTrackIdentities = getenvBoolDefault("RATE_STATS_TRACK_IDENTITIES", false)

	cfg.concurrencyMax = getenvIntDefault("CONCURRENCY_MAX", 100)
	cfg.concurrencyTimeout = getenvDurationDefault("CONCURRENCY_TIMEOUT", 0)
	cfg.concurrencyRetryAfter = getenvDurationDefault("CONCURRENCY_RETRY_AFTER", 1*time.Second)

	if cfg.upstreamURL == "" {
		return config{}, errors.New("UPSTREAM_URL is required")
	}
	if cfg.rateLimitRPM <= 0 {
		return config{}, errors.New("RATE_LIMIT_RPM must be > 0")
	}
	if cfg.concurrencyMax < 0 {
		return config{}, errors.New("CONCURRENCY_MAX must be >= 0")
	}
	return cfg, nil
}

func getenvDefault(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvIntDefault(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getenvBoolDefault(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvDurationDefault(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
