// Package config provides configuration management for flowcheck.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/thebtf/flowcheck/internal/privacy"
)

// Defaults.
const (
	DefaultWorkerHost          = "127.0.0.1"
	DefaultWorkerPort          = 5000
	DefaultSimilarityThreshold = 0.7
	DefaultClusterCount        = 3
	DefaultMaxRecommendations  = 3
	DefaultClusterSeed         = 42
	DefaultClusterRestarts     = 10
	DefaultFetchTimeout        = 10 * time.Second
	DefaultIndexCacheTTL       = 10 * time.Minute
	DefaultLockTTL             = 30 * time.Second
	DefaultFactCheckRPS        = 5.0
	DefaultFactCheckBurst      = 5
	DefaultLogLevel            = "info"
)

// Settings keys. Each is also read from the environment variable of the same
// name in upper case.
const (
	KeyDataDir             = "flowcheck_data_dir"
	KeyWorkerHost          = "flowcheck_worker_host"
	KeyWorkerPort          = "flowcheck_worker_port"
	KeyDatabaseURL         = "flowcheck_database_url"
	KeyMaxConns            = "flowcheck_max_conns"
	KeyFactCheckAPIKey     = "flowcheck_factcheck_api_key"
	KeyFactCheckBaseURL    = "flowcheck_factcheck_base_url"
	KeyFactCheckRPS        = "flowcheck_factcheck_rps"
	KeyFactCheckBurst      = "flowcheck_factcheck_burst"
	KeyNewsAPIKey          = "flowcheck_news_api_key"
	KeyNewsBaseURL         = "flowcheck_news_base_url"
	KeyFetchTimeout        = "flowcheck_fetch_timeout"
	KeySimilarityThreshold = "flowcheck_similarity_threshold"
	KeyClusterCount        = "flowcheck_cluster_count"
	KeyMaxRecommendations  = "flowcheck_max_recommendations"
	KeyClusterSeed         = "flowcheck_cluster_seed"
	KeyClusterRestarts     = "flowcheck_cluster_restarts"
	KeyIndexCacheTTL       = "flowcheck_index_cache_ttl"
	KeyRedisURL            = "flowcheck_redis_url"
	KeyLockTTL             = "flowcheck_lock_ttl"
	KeyLexiconPath         = "flowcheck_lexicon_path"
	KeyExtraStopwords      = "flowcheck_extra_stopwords"
	KeyLogLevel            = "flowcheck_log_level"
)

// legacyEnv maps keys to the unprefixed variable names of older deployments.
var legacyEnv = map[string]string{
	KeyFactCheckAPIKey: "FACT_CHECK_API_KEY",
	KeyNewsAPIKey:      "NEWS_API_KEY",
	KeyDatabaseURL:     "DATABASE_URL",
}

// Config holds the service configuration.
type Config struct {
	WorkerHost          string        `json:"FLOWCHECK_WORKER_HOST"`
	DatabaseURL         string        `json:"FLOWCHECK_DATABASE_URL"`
	FactCheckAPIKey     string        `json:"-"`
	FactCheckBaseURL    string        `json:"FLOWCHECK_FACTCHECK_BASE_URL"`
	NewsAPIKey          string        `json:"-"`
	NewsBaseURL         string        `json:"FLOWCHECK_NEWS_BASE_URL"`
	RedisURL            string        `json:"FLOWCHECK_REDIS_URL"`
	LexiconPath         string        `json:"FLOWCHECK_LEXICON_PATH"`
	LogLevel            string        `json:"FLOWCHECK_LOG_LEVEL"`
	ExtraStopwords      []string      `json:"FLOWCHECK_EXTRA_STOPWORDS"`
	WorkerPort          int           `json:"FLOWCHECK_WORKER_PORT"`
	MaxConns            int           `json:"FLOWCHECK_MAX_CONNS"`
	FactCheckBurst      int           `json:"FLOWCHECK_FACTCHECK_BURST"`
	ClusterCount        int           `json:"FLOWCHECK_CLUSTER_COUNT"`
	MaxRecommendations  int           `json:"FLOWCHECK_MAX_RECOMMENDATIONS"`
	ClusterRestarts     int           `json:"FLOWCHECK_CLUSTER_RESTARTS"`
	ClusterSeed         uint64        `json:"FLOWCHECK_CLUSTER_SEED"`
	FactCheckRPS        float64       `json:"FLOWCHECK_FACTCHECK_RPS"`
	SimilarityThreshold float64       `json:"FLOWCHECK_SIMILARITY_THRESHOLD"`
	FetchTimeout        time.Duration `json:"FLOWCHECK_FETCH_TIMEOUT"`
	IndexCacheTTL       time.Duration `json:"FLOWCHECK_INDEX_CACHE_TTL"`
	LockTTL             time.Duration `json:"FLOWCHECK_LOCK_TTL"`
}

var (
	global   *Config
	globalMu sync.RWMutex
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		WorkerHost:          DefaultWorkerHost,
		WorkerPort:          DefaultWorkerPort,
		MaxConns:            4,
		FactCheckRPS:        DefaultFactCheckRPS,
		FactCheckBurst:      DefaultFactCheckBurst,
		FetchTimeout:        DefaultFetchTimeout,
		SimilarityThreshold: DefaultSimilarityThreshold,
		ClusterCount:        DefaultClusterCount,
		MaxRecommendations:  DefaultMaxRecommendations,
		ClusterSeed:         DefaultClusterSeed,
		ClusterRestarts:     DefaultClusterRestarts,
		IndexCacheTTL:       DefaultIndexCacheTTL,
		LockTTL:             DefaultLockTTL,
		LogLevel:            DefaultLogLevel,
		ExtraStopwords:      []string{},
	}
}

// DataDir returns the data directory, ~/.flowcheck unless FLOWCHECK_DATA_DIR is set.
func DataDir() string {
	if dir := os.Getenv(strings.ToUpper(KeyDataDir)); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".flowcheck")
}

// DBPath returns the default SQLite database path.
func DBPath() string {
	return filepath.Join(DataDir(), "flowcheck.db")
}

// SettingsPath returns the settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), "settings.json")
}

// DefaultLexiconPath returns the optional lexicon file path.
func DefaultLexiconPath() string {
	return filepath.Join(DataDir(), "lexicon.yaml")
}

// EnsureDataDir creates the data directory if needed.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0750)
}

// EnsureSettings writes a default settings file if none exists.
func EnsureSettings() error {
	path := SettingsPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	data, err := json.MarshalIndent(defaultSettings(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// EnsureAll creates the data directory and settings file.
func EnsureAll() error {
	if err := EnsureDataDir(); err != nil {
		return err
	}
	return EnsureSettings()
}

func defaultSettings() map[string]any {
	d := Default()
	return map[string]any{
		strings.ToUpper(KeyWorkerPort):          d.WorkerPort,
		strings.ToUpper(KeySimilarityThreshold): d.SimilarityThreshold,
		strings.ToUpper(KeyClusterCount):        d.ClusterCount,
		strings.ToUpper(KeyMaxRecommendations):  d.MaxRecommendations,
		strings.ToUpper(KeyFetchTimeout):        d.FetchTimeout.String(),
		strings.ToUpper(KeyLogLevel):            d.LogLevel,
	}
}

// NewViper returns a viper instance with defaults, the settings file and
// environment bindings applied. Callers may bind flags before calling FromViper.
func NewViper() *viper.Viper {
	return NewViperWithFile(SettingsPath())
}

// NewViperWithFile is NewViper reading settings from path.
func NewViperWithFile(path string) *viper.Viper {
	v := viper.New()
	d := Default()

	v.SetDefault(KeyWorkerHost, d.WorkerHost)
	v.SetDefault(KeyWorkerPort, d.WorkerPort)
	v.SetDefault(KeyDatabaseURL, "")
	v.SetDefault(KeyMaxConns, d.MaxConns)
	v.SetDefault(KeyFactCheckAPIKey, "")
	v.SetDefault(KeyFactCheckBaseURL, "")
	v.SetDefault(KeyFactCheckRPS, d.FactCheckRPS)
	v.SetDefault(KeyFactCheckBurst, d.FactCheckBurst)
	v.SetDefault(KeyNewsAPIKey, "")
	v.SetDefault(KeyNewsBaseURL, "")
	v.SetDefault(KeyFetchTimeout, d.FetchTimeout)
	v.SetDefault(KeySimilarityThreshold, d.SimilarityThreshold)
	v.SetDefault(KeyClusterCount, d.ClusterCount)
	v.SetDefault(KeyMaxRecommendations, d.MaxRecommendations)
	v.SetDefault(KeyClusterSeed, d.ClusterSeed)
	v.SetDefault(KeyClusterRestarts, d.ClusterRestarts)
	v.SetDefault(KeyIndexCacheTTL, d.IndexCacheTTL)
	v.SetDefault(KeyRedisURL, "")
	v.SetDefault(KeyLockTTL, d.LockTTL)
	v.SetDefault(KeyLexiconPath, "")
	v.SetDefault(KeyExtraStopwords, "")
	v.SetDefault(KeyLogLevel, d.LogLevel)

	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		_ = v.BindEnv(key, strings.ToUpper(key), legacy)
	}

	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("Ignoring unreadable settings file")
		}
	}
	return v
}

// FromViper builds a Config from v and validates it.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		WorkerHost:          v.GetString(KeyWorkerHost),
		WorkerPort:          v.GetInt(KeyWorkerPort),
		DatabaseURL:         v.GetString(KeyDatabaseURL),
		MaxConns:            v.GetInt(KeyMaxConns),
		FactCheckAPIKey:     v.GetString(KeyFactCheckAPIKey),
		FactCheckBaseURL:    v.GetString(KeyFactCheckBaseURL),
		FactCheckRPS:        v.GetFloat64(KeyFactCheckRPS),
		FactCheckBurst:      v.GetInt(KeyFactCheckBurst),
		NewsAPIKey:          v.GetString(KeyNewsAPIKey),
		NewsBaseURL:         v.GetString(KeyNewsBaseURL),
		FetchTimeout:        v.GetDuration(KeyFetchTimeout),
		SimilarityThreshold: v.GetFloat64(KeySimilarityThreshold),
		ClusterCount:        v.GetInt(KeyClusterCount),
		MaxRecommendations:  v.GetInt(KeyMaxRecommendations),
		ClusterSeed:         v.GetUint64(KeyClusterSeed),
		ClusterRestarts:     v.GetInt(KeyClusterRestarts),
		IndexCacheTTL:       v.GetDuration(KeyIndexCacheTTL),
		RedisURL:            v.GetString(KeyRedisURL),
		LockTTL:             v.GetDuration(KeyLockTTL),
		LexiconPath:         v.GetString(KeyLexiconPath),
		ExtraStopwords:      stringList(v.Get(KeyExtraStopwords)),
		LogLevel:            v.GetString(KeyLogLevel),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration from the settings file and environment.
func Load() (*Config, error) {
	return FromViper(NewViper())
}

// Get returns the process-wide configuration, loading it on first use.
// An invalid configuration falls back to defaults.
func Get() *Config {
	globalMu.RLock()
	cfg := global
	globalMu.RUnlock()
	if cfg != nil {
		return cfg
	}

	loaded, err := Load()
	if err != nil {
		log.Warn().Err(err).Msg("Invalid configuration, using defaults")
		loaded = Default()
	}

	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		global = loaded
	}
	return global
}

// Set replaces the process-wide configuration.
func Set(cfg *Config) {
	globalMu.Lock()
	global = cfg
	globalMu.Unlock()
}

// GetWorkerPort returns the port from FLOWCHECK_WORKER_PORT or the configuration.
func GetWorkerPort() int {
	if s := os.Getenv(strings.ToUpper(KeyWorkerPort)); s != "" {
		if port, err := strconv.Atoi(s); err == nil && port > 0 {
			return port
		}
	}
	return Get().WorkerPort
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Errorf("similarity threshold %v outside [0,1]", c.SimilarityThreshold))
	}
	if c.ClusterCount < 1 {
		errs = append(errs, fmt.Errorf("cluster count must be at least 1, got %d", c.ClusterCount))
	}
	if c.MaxRecommendations < 1 {
		errs = append(errs, fmt.Errorf("max recommendations must be at least 1, got %d", c.MaxRecommendations))
	}
	if c.WorkerPort <= 0 || c.WorkerPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid worker port %d", c.WorkerPort))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout))
	}
	if c.IndexCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("index cache ttl must not be negative, got %s", c.IndexCacheTTL))
	}
	return errors.Join(errs...)
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.WorkerHost, c.WorkerPort)
}

// Database returns the SQLite path and Postgres URL to open. Exactly one is
// non-empty. sqlite:/// URLs are accepted for compatibility.
func (c *Config) Database() (path, url string) {
	switch {
	case c.DatabaseURL == "":
		return DBPath(), ""
	case strings.HasPrefix(c.DatabaseURL, "postgres://"), strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		return "", c.DatabaseURL
	case strings.HasPrefix(c.DatabaseURL, "sqlite:///"):
		return strings.TrimPrefix(c.DatabaseURL, "sqlite:///"), ""
	default:
		return c.DatabaseURL, ""
	}
}

// Redacted returns a copy safe for printing.
func (c *Config) Redacted() map[string]any {
	out := map[string]any{}
	data, err := json.Marshal(c)
	if err == nil {
		_ = json.Unmarshal(data, &out)
	}
	out[strings.ToUpper(KeyFactCheckAPIKey)] = privacy.Mask(c.FactCheckAPIKey)
	out[strings.ToUpper(KeyNewsAPIKey)] = privacy.Mask(c.NewsAPIKey)
	out[strings.ToUpper(KeyDatabaseURL)] = privacy.Clean(c.DatabaseURL)
	out[strings.ToUpper(KeyRedisURL)] = privacy.Clean(c.RedisURL)
	out[strings.ToUpper(KeyFetchTimeout)] = c.FetchTimeout.String()
	out[strings.ToUpper(KeyIndexCacheTTL)] = c.IndexCacheTTL.String()
	out[strings.ToUpper(KeyLockTTL)] = c.LockTTL.String()
	return out
}

func stringList(raw any) []string {
	switch v := raw.(type) {
	case string:
		return splitTrim(v)
	case []string:
		return splitTrim(strings.Join(v, ","))
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		return splitTrim(strings.Join(parts, ","))
	default:
		return []string{}
	}
}

// splitTrim splits a comma-separated string and drops empty values.
func splitTrim(s string) []string {
	result := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			result = append(result, p)
		}
	}
	return result
}
