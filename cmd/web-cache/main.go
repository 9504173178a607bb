package main

import (
	"flag"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"

	webcache "github.com/ericselin/web-cache"
	"github.com/ericselin/web-cache/cache"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	configFilenameFlag string
	portFlag           int
	originFlag         string
	providerFlag       string
	sqliteFileFlag     string
	redisURLFlag       string
	verbosityTraceFlag bool
)

func init() {
	flag.StringVar(&configFilenameFlag, "config", "", "Path to config file")
	flag.StringVar(&originFlag, "origin", "", "Origin to proxy to (overrides config)")
	flag.IntVar(&portFlag, "port", 8080, "Port to listen on")
	flag.StringVar(&providerFlag, "provider", "sqlite", "Cache store to use (memory, sqlite or redis)")
	flag.StringVar(&sqliteFileFlag, "sqlite-file", "./cache.db", "SQLite database file for the sqlite store")
	flag.StringVar(&redisURLFlag, "redis-url", "redis://localhost:6379/0", "Redis URL for the redis store")
	flag.BoolVar(&verbosityTraceFlag, "vv", false, "Verbosity: trace logging")
}

func main() {
	flag.Parse()

	logLevel := zerolog.DebugLevel
	if verbosityTraceFlag {
		logLevel = zerolog.TraceLevel
	}
	log.Logger = log.Level(logLevel).Output(zerolog.ConsoleWriter{Out: os.Stdout})

	if configFilenameFlag == "" {
		log.Fatal().Msg("Please specify config file")
	}
	config, err := getConfig(configFilenameFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not read config")
	}

	if originFlag != "" {
		config.Origin = originFlag
	}
	if config.Origin == "" {
		log.Fatal().Msg("Please specify origin")
	}
	originURL, err := url.Parse(config.Origin)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid origin URL")
	}

	var store cache.Store
	switch providerFlag {
	case "memory":
		store = cache.NewMemoryStore()
	case "sqlite":
		store, err = cache.NewSQLiteStore(sqliteFileFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not open sqlite store")
		}
	case "redis":
		store, err = cache.NewRedisStore(redisURLFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("Could not connect to redis")
		}
	default:
		log.Fatal().Msgf("Unsupported cache provider: %s", providerFlag)
	}

	rules, err := config.rules()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid rules")
	}
	maxAge, err := config.maxAge()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid maxAge")
	}

	wc, err := webcache.New(webcache.Config{
		Store:             store,
		Rules:             rules,
		MaxAge:            maxAge,
		Version:           config.Version,
		IgnoreQuerystring: config.IgnoreQuerystring,
		ClientCache:       config.ClientCache,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid cache configuration")
	}

	proxy := httputil.NewSingleHostReverseProxy(originURL)

	addr := fmt.Sprintf(":%d", portFlag)
	log.Info().Str("origin", config.Origin).Str("provider", providerFlag).Msgf("Listening on %s", addr)
	if err := http.ListenAndServe(addr, wc.Middleware(proxy)); err != nil {
		log.Fatal().Err(err).Msg("Server exited")
	}
}
