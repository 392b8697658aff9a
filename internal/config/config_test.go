// Package config provides configuration management for flowcheck.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigSuite is a test suite for config operations.
type ConfigSuite struct {
	suite.Suite
	tempDir string
}

func (s *ConfigSuite) SetupTest() {
	s.tempDir = s.T().TempDir()
	s.T().Setenv("HOME", s.tempDir)
	s.T().Setenv("FLOWCHECK_DATA_DIR", "")
	for _, name := range []string{
		"FLOWCHECK_WORKER_PORT", "FLOWCHECK_SIMILARITY_THRESHOLD", "FLOWCHECK_FACTCHECK_API_KEY",
		"FACT_CHECK_API_KEY", "NEWS_API_KEY", "DATABASE_URL", "FLOWCHECK_DATABASE_URL",
	} {
		s.T().Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) writeSettings(content string) {
	s.Require().NoError(EnsureDataDir())
	s.Require().NoError(os.WriteFile(SettingsPath(), []byte(content), 0600))
}

// TestDefault tests default configuration values.
func (s *ConfigSuite) TestDefault() {
	cfg := Default()

	s.Equal(DefaultWorkerPort, cfg.WorkerPort)
	s.Equal(0.7, cfg.SimilarityThreshold)
	s.Equal(3, cfg.ClusterCount)
	s.Equal(3, cfg.MaxRecommendations)
	s.Equal(uint64(42), cfg.ClusterSeed)
	s.Equal(10*time.Second, cfg.FetchTimeout)
	s.NoError(cfg.Validate())
}

// TestPaths tests data directory derived paths.
func (s *ConfigSuite) TestPaths() {
	s.Equal(filepath.Join(s.tempDir, ".flowcheck"), DataDir())
	s.Contains(DBPath(), "flowcheck.db")
	s.Contains(SettingsPath(), "settings.json")
	s.Contains(DefaultLexiconPath(), "lexicon.yaml")

	custom := filepath.Join(s.tempDir, "elsewhere")
	s.T().Setenv("FLOWCHECK_DATA_DIR", custom)
	s.Equal(custom, DataDir())
}

// TestEnsureAll tests full initialization.
func (s *ConfigSuite) TestEnsureAll() {
	s.NoError(EnsureAll())

	info, err := os.Stat(DataDir())
	s.Require().NoError(err)
	s.True(info.IsDir())
	_, err = os.Stat(SettingsPath())
	s.NoError(err)

	// Second call keeps the existing file.
	s.Require().NoError(os.WriteFile(SettingsPath(), []byte(`{"FLOWCHECK_WORKER_PORT": 6001}`), 0600))
	s.NoError(EnsureSettings())
	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(6001, cfg.WorkerPort)
}

// TestEnsureSettings_DefaultFileLoads checks the generated file round-trips.
func (s *ConfigSuite) TestEnsureSettings_DefaultFileLoads() {
	s.Require().NoError(EnsureAll())
	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(DefaultFetchTimeout, cfg.FetchTimeout)
	s.Equal(DefaultSimilarityThreshold, cfg.SimilarityThreshold)
}

// TestLoad_TableDriven tests configuration loading with various scenarios.
func (s *ConfigSuite) TestLoad_TableDriven() {
	tests := []struct {
		name              string
		settingsJSON      string
		expectedPort      int
		expectedThreshold float64
		expectedClusters  int
	}{
		{
			name:              "no settings file",
			expectedPort:      DefaultWorkerPort,
			expectedThreshold: DefaultSimilarityThreshold,
			expectedClusters:  DefaultClusterCount,
		},
		{
			name:              "custom port",
			settingsJSON:      `{"FLOWCHECK_WORKER_PORT": 38888}`,
			expectedPort:      38888,
			expectedThreshold: DefaultSimilarityThreshold,
			expectedClusters:  DefaultClusterCount,
		},
		{
			name:              "custom threshold and clusters",
			settingsJSON:      `{"FLOWCHECK_SIMILARITY_THRESHOLD": 0.85, "FLOWCHECK_CLUSTER_COUNT": 5}`,
			expectedPort:      DefaultWorkerPort,
			expectedThreshold: 0.85,
			expectedClusters:  5,
		},
		{
			name:              "invalid JSON returns defaults",
			settingsJSON:      `{invalid}`,
			expectedPort:      DefaultWorkerPort,
			expectedThreshold: DefaultSimilarityThreshold,
			expectedClusters:  DefaultClusterCount,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_ = os.Remove(SettingsPath())
			if tt.settingsJSON != "" {
				s.writeSettings(tt.settingsJSON)
			}

			cfg, err := Load()
			s.Require().NoError(err)
			s.Equal(tt.expectedPort, cfg.WorkerPort)
			s.Equal(tt.expectedThreshold, cfg.SimilarityThreshold)
			s.Equal(tt.expectedClusters, cfg.ClusterCount)
		})
	}
}

// TestLoad_EnvOverridesFile tests env precedence.
func (s *ConfigSuite) TestLoad_EnvOverridesFile() {
	s.writeSettings(`{"FLOWCHECK_SIMILARITY_THRESHOLD": 0.9, "FLOWCHECK_FETCH_TIMEOUT": "3s"}`)
	s.T().Setenv("FLOWCHECK_SIMILARITY_THRESHOLD", "0.6")

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(0.6, cfg.SimilarityThreshold)
	s.Equal(3*time.Second, cfg.FetchTimeout)
}

// TestLoad_LegacyEnv tests the unprefixed variable names.
func (s *ConfigSuite) TestLoad_LegacyEnv() {
	s.T().Setenv("FACT_CHECK_API_KEY", "fc-key")
	s.T().Setenv("NEWS_API_KEY", "news-key")
	s.T().Setenv("DATABASE_URL", "postgres://u:p@db/flowcheck")

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal("fc-key", cfg.FactCheckAPIKey)
	s.Equal("news-key", cfg.NewsAPIKey)

	path, url := cfg.Database()
	s.Empty(path)
	s.Equal("postgres://u:p@db/flowcheck", url)

	s.T().Setenv("FLOWCHECK_FACTCHECK_API_KEY", "prefixed")
	cfg, err = Load()
	s.Require().NoError(err)
	s.Equal("prefixed", cfg.FactCheckAPIKey)
}

// TestLoad_ExtraStopwords tests list parsing from both JSON forms.
func (s *ConfigSuite) TestLoad_ExtraStopwords() {
	s.writeSettings(`{"FLOWCHECK_EXTRA_STOPWORDS": ["please", " really "]}`)
	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal([]string{"please", "really"}, cfg.ExtraStopwords)

	s.writeSettings(`{"FLOWCHECK_EXTRA_STOPWORDS": "please,really"}`)
	cfg, err = Load()
	s.Require().NoError(err)
	s.Equal([]string{"please", "really"}, cfg.ExtraStopwords)
}

// TestLoad_Invalid tests validation failures.
func (s *ConfigSuite) TestLoad_Invalid() {
	s.writeSettings(`{"FLOWCHECK_SIMILARITY_THRESHOLD": 1.5}`)
	_, err := Load()
	s.Error(err)
}

// TestDatabase tests DATABASE_URL interpretation.
func TestDatabase(t *testing.T) {
	t.Setenv("FLOWCHECK_DATA_DIR", "/data")

	tests := []struct {
		name     string
		url      string
		wantPath string
		wantURL  string
	}{
		{name: "default", url: "", wantPath: filepath.Join("/data", "flowcheck.db")},
		{name: "sqlite url", url: "sqlite:///var/lib/app.db", wantPath: "var/lib/app.db"},
		{name: "plain path", url: "/tmp/x.db", wantPath: "/tmp/x.db"},
		{name: "postgres", url: "postgresql://h/db", wantURL: "postgresql://h/db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, url := (&Config{DatabaseURL: tt.url}).Database()
			assert.Equal(t, tt.wantPath, path)
			assert.Equal(t, tt.wantURL, url)
		})
	}
}

// TestValidate tests range checks.
func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.ClusterCount = 0
	cfg.SimilarityThreshold = -0.1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cluster count")
	assert.Contains(t, err.Error(), "similarity threshold")
}

// TestRedacted tests secret masking.
func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.FactCheckAPIKey = "secret"
	cfg.DatabaseURL = "postgres://flow:hunter2@db:5432/flowcheck"
	out := cfg.Redacted()

	assert.Equal(t, "postgres://flow:REDACTED@db:5432/flowcheck", out["FLOWCHECK_DATABASE_URL"])
	assert.Equal(t, "***", out["FLOWCHECK_FACTCHECK_API_KEY"])
	assert.Equal(t, "", out["FLOWCHECK_NEWS_API_KEY"])
	assert.Equal(t, "10s", out["FLOWCHECK_FETCH_TIMEOUT"])
	assert.EqualValues(t, DefaultWorkerPort, out["FLOWCHECK_WORKER_PORT"])
}

// TestGetWorkerPort tests the env override.
func TestGetWorkerPort(t *testing.T) {
	Set(Default())
	t.Cleanup(func() { Set(nil) })

	t.Setenv("FLOWCHECK_WORKER_PORT", "45678")
	assert.Equal(t, 45678, GetWorkerPort())

	t.Setenv("FLOWCHECK_WORKER_PORT", "not-a-number")
	assert.Equal(t, DefaultWorkerPort, GetWorkerPort())

	t.Setenv("FLOWCHECK_WORKER_PORT", "0")
	assert.Equal(t, DefaultWorkerPort, GetWorkerPort())
}

// TestSplitTrim tests the splitTrim helper function.
func TestSplitTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty string", input: "", expected: []string{}},
		{name: "single value", input: "please", expected: []string{"please"}},
		{name: "values with spaces", input: " a , b , c ", expected: []string{"a", "b", "c"}},
		{name: "empty values filtered", input: "a,,b,,", expected: []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitTrim(tt.input))
		})
	}
}
