package utils

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEnvPath = "./test.env"

func cleanup() {
	os.Remove(testEnvPath)
}

// TestMain handles test setup and cleanup for all tests in this package
func TestMain(m *testing.M) {
	exitCode := m.Run()

	cleanup()

	os.Exit(exitCode)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func validConfig() *Config {
	return &Config{
		Generator: GeneratorConfig{InitialPosts: 10},
		Server:    ServerConfig{Port: 8080, MaxRequestsPerMinute: 100},
		Feed:      FeedConfig{Interval: 0, BatchSize: 5},
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_ENV_VAR", "test-value")

	value := getEnv("TEST_ENV_VAR", "default-value")
	assert.Equal(t, "test-value", value)

	value = getEnv("NON_EXISTENT_VAR", "default-value")
	assert.Equal(t, "default-value", value)
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT_VAR", "42")
	assert.Equal(t, 42, getEnvAsInt("TEST_INT_VAR", 10))

	t.Setenv("TEST_INVALID_INT_VAR", "not-an-int")
	assert.Equal(t, 10, getEnvAsInt("TEST_INVALID_INT_VAR", 10))

	assert.Equal(t, 10, getEnvAsInt("NON_EXISTENT_VAR", 10))

	t.Setenv("TEST_INT64_VAR", "9000000000")
	assert.Equal(t, int64(9000000000), getEnvAsInt64("TEST_INT64_VAR", 1))
}

func TestValidateConfig(t *testing.T) {
	assert.NoError(t, validateConfig(validConfig()))

	tests := []struct {
		name   string
		modify func(c *Config)
		errKey string
	}{
		{name: "negative initial posts", modify: func(c *Config) { c.Generator.InitialPosts = -1 }, errKey: "INITIAL_POSTS"},
		{name: "port zero", modify: func(c *Config) { c.Server.Port = 0 }, errKey: "SERVER_PORT"},
		{name: "port too large", modify: func(c *Config) { c.Server.Port = 70000 }, errKey: "SERVER_PORT"},
		{name: "no rate", modify: func(c *Config) { c.Server.MaxRequestsPerMinute = 0 }, errKey: "SERVER_MAX_REQUESTS_PER_MINUTE"},
		{name: "negative interval", modify: func(c *Config) { c.Feed.Interval = -5 }, errKey: "FEED_INTERVAL"},
		{name: "feeder without batch", modify: func(c *Config) { c.Feed.Interval = 5; c.Feed.BatchSize = 0 }, errKey: "FEED_BATCH_SIZE"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := validConfig()
			tc.modify(config)
			err := validateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errKey)
		})
	}
}

func TestValidateConfigCreatesDatabaseDir(t *testing.T) {
	config := validConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "nested", "dir", "posts.db")

	require.NoError(t, validateConfig(config))
	info, err := os.Stat(filepath.Dir(config.Database.Path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoadConfigFromFile(t *testing.T) {
	content := "GENERATOR_START_DATE=2021-06-01\nGENERATOR_SEED=99\nINITIAL_POSTS=3\nSERVER_PORT=9090\nFEED_INTERVAL=30\nFEED_BATCH_SIZE=2\n"
	require.NoError(t, os.WriteFile(testEnvPath, []byte(content), 0644))
	defer cleanup()

	// godotenv does not override variables that are already set
	for _, key := range []string{"GENERATOR_START_DATE", "GENERATOR_SEED", "INITIAL_POSTS", "SERVER_PORT", "FEED_INTERVAL", "FEED_BATCH_SIZE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	config, err := LoadConfig(testEnvPath, quietLogger())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC), config.Generator.StartDate)
	assert.Equal(t, int64(99), config.Generator.Seed)
	assert.Equal(t, 3, config.Generator.InitialPosts)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, 30, config.Feed.Interval)
	assert.Equal(t, 2, config.Feed.BatchSize)
	assert.Equal(t, "Post Index", config.App.Name)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("GENERATOR_START_DATE", "")

	config, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"), quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 2020, config.Generator.StartDate.Year())
	assert.Equal(t, "", config.Database.Path)
}

func TestLoadConfigBadStartDate(t *testing.T) {
	t.Setenv("GENERATOR_START_DATE", "01/01/2020")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"), quietLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GENERATOR_START_DATE")
}
