package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./feedscout.db" description:"Path to the SQLite database file"`

	// Application configuration
	Port             string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl          string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://feedscout.example.com)"`
	APIAccessKey     string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	ReplacementsFile string `long:"replacements-file" env:"REPLACEMENTS_FILE" description:"YAML file with ordered base URL replacements"`
	RetryCount       int    `long:"retry-count" env:"RETRY_COUNT" default:"0" description:"Number of retries for failed fetches (0 = single attempt)"`
	RetryDelay       int    `long:"retry-delay" env:"RETRY_DELAY" default:"1" description:"Delay between retries in seconds"`
	Timeout          int    `long:"timeout" env:"TIMEOUT" default:"30" description:"HTTP request timeout in seconds"`
	ProbeFanOut      int    `long:"probe-fan-out" env:"PROBE_FAN_OUT" default:"4" description:"Concurrent image probes per feed item"`
	ExtractContent   bool   `long:"extract-content" env:"EXTRACT_CONTENT" description:"Backfill empty item content from the permalink page"`

	// Background refresh configuration
	WorkerCount int `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for feed refreshes"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"FeedScout/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:           raw.DBPath,
		Port:             raw.Port,
		BaseUrl:          raw.BaseUrl,
		APIAccessKey:     raw.APIAccessKey,
		ReplacementsFile: raw.ReplacementsFile,
		RetryCount:       raw.RetryCount,
		RetryDelay:       raw.RetryDelay,
		Timeout:          raw.Timeout,
		ProbeFanOut:      raw.ProbeFanOut,
		ExtractContent:   raw.ExtractContent,

		WorkerCount: raw.WorkerCount,
		UserAgent:        raw.UserAgent,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
