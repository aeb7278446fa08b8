package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"coordination-gateway/eventbus"
	busdomain "coordination-gateway/eventbus/domain"
	businfra "coordination-gateway/eventbus/infra"

	"github.com/redis/go-redis/v9"
)

// Ferramenta de validação do bus: publica um payload JSON em um canal ou fica
// assinado (exato ou por padrão) imprimindo o que chega.
//
//	EVENTS_MODE=subscribe EVENTS_BUS=test_bus EVENTS_CHANNEL='*' ./events
//	EVENTS_MODE=publish  EVENTS_BUS=test_bus EVENTS_CHANNEL=chan1 EVENTS_PAYLOAD='{"hello":"world"}' ./events
func main() {
	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.redisAddr,
		Password: cfg.redisPassword,
		DB:       cfg.redisDB,
	})
	defer func() { _ = rdb.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	pingCtx, cancelPing := context.WithTimeout(ctx, 2*time.Second)
	_, err = rdb.Ping(pingCtx).Result()
	cancelPing()
	if err != nil {
		log.Fatalf("redis ping error: %v", err)
	}

	bus := eventbus.New[json.RawMessage](
		businfra.NewRedisBroker(rdb),
		busdomain.BusNameOf(cfg.busName),
		eventbus.WithMaxMessageSize(cfg.maxMessageSize),
	)

	switch cfg.mode {
	case "publish":
		if err := bus.Publish(ctx, cfg.channel, json.RawMessage(cfg.payload)); err != nil {
			log.Fatalf("publish error: %v", err)
		}
		log.Printf("published %d bytes to %s", len(cfg.payload), busdomain.ChannelKey(bus.Name(), cfg.channel))

	case "subscribe":
		events, err := bus.Subscribe(ctx, cfg.channel)
		if err != nil {
			log.Fatalf("subscribe error: %v", err)
		}
		log.Printf("subscribed to %s", busdomain.ChannelKey(bus.Name(), cfg.channel))
		for ev := range events {
			log.Printf("event: %s", ev)
		}
		log.Printf("subscription ended")

	default:
		log.Fatalf("unknown EVENTS_MODE %q (want publish or subscribe)", cfg.mode)
	}
}

type config struct {
	redisAddr     string
	redisPassword string
	redisDB       int

	mode           string
	busName        string
	channel        string
	payload        string
	maxMessageSize int
}

func readConfig() (config, error) {
	cfg := config{}
	cfg.redisAddr = getenvDefault("REDIS_ADDR", "localhost:6379")
	cfg.redisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.redisDB = getenvIntDefault("REDIS_DB", 0)

	cfg.mode = getenvDefault("EVENTS_MODE", "subscribe")
	cfg.busName = getenvDefault("EVENTS_BUS", "test_bus")
	cfg.channel = getenvDefault("EVENTS_CHANNEL", "*")
	cfg.payload = getenvDefault("EVENTS_PAYLOAD", "{}")
	cfg.maxMessageSize = getenvIntDefault("EVENTS_MAX_MESSAGE_SIZE", 0)

	if cfg.busName == "" || cfg.channel == "" {
		return config{}, errors.New("EVENTS_BUS and EVENTS_CHANNEL are required")
	}
	if cfg.mode == "publish" && !json.Valid([]byte(cfg.payload)) {
		return config{}, errors.New("EVENTS_PAYLOAD must be valid JSON")
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
