// Command sessauthd runs the demo session-authentication server.
//
// It serves a small HTML front end, the JSON auth API, an admin-only
// seen-users listing, a handful of echo endpoints, and a Prometheus metrics
// endpoint. All session state lives in process memory and dies with the
// process; the signing secret is drawn fresh at startup, so tokens never
// survive a restart either.
//
// Run:
//
//	go run ./cmd/sessauthd -l 127.0.0.1:8080
//
// Then:
//
//	curl -i -c jar.txt -X POST localhost:8080/api/login \
//	  -H 'Content-Type: application/json' \
//	  -d '{"loginname":"admin","password":"anything"}'
//
//	curl -i -b jar.txt localhost:8080/api/seen-users
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	sessauth "github.com/sessauth/sessauth"
)

const (
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 2 << 20
)

func main() {
	var (
		listenAddr = flag.String("l", "", "address where the server accepts connections (e.g., 127.0.0.1:8080)")
		configPath = flag.String("config", "", "path to an optional YAML config file")
	)
	flag.Parse()

	config := defaultServerConfig()
	if *configPath != "" {
		loaded, err := LoadServerConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		config = loaded
	}
	if *listenAddr != "" {
		config.ListenAddr = *listenAddr
	}

	log.Println("Starting sessauthd...")

	sink, cleanup, err := buildAuditSink(config.Audit)
	if err != nil {
		log.Fatalf("Failed to set up audit sink: %v", err)
	}
	defer cleanup()

	cfg := sessauth.DefaultConfig()
	cfg.Metrics.Enabled = config.Metrics

	engine, err := sessauth.New().
		WithConfig(cfg).
		WithAuditSink(sink).
		Build()
	if err != nil {
		// covers the one unrecoverable startup failure: no secure random
		// bytes for the signing secret
		log.Fatalf("Failed to build engine: %v", err)
	}
	defer engine.Close()

	srv := newServer(engine, config)

	handler := http.TimeoutHandler(srv.Router(), requestTimeout, "request timed out")

	log.Printf("Listening on %s", config.ListenAddr)
	log.Fatal(http.ListenAndServe(config.ListenAddr, handler))
}

func buildAuditSink(cfg AuditConfig) (sessauth.AuditSink, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case "", "stdout":
		return sessauth.NewJSONWriterSink(os.Stdout), noop, nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return sessauth.NewRedisSink(client, cfg.RedisKey, cfg.MaxLen), func() {
			_ = client.Close()
		}, nil

	case "embedded":
		mr, err := miniredis.Run()
		if err != nil {
			return nil, noop, err
		}
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		return sessauth.NewRedisSink(client, cfg.RedisKey, cfg.MaxLen), func() {
			_ = client.Close()
			mr.Close()
		}, nil

	default:
		return sessauth.NewJSONWriterSink(os.Stdout), noop, nil
	}
}
