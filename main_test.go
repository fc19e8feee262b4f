package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/amirphl/mailwright/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "worker", "migrate", "token"} {
		assert.True(t, names[want], "missing command %q", want)
	}

	flag := serveCmd.Flags().Lookup("with-worker")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestTokenCommandRequiresIdentity(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"token"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--user-id")
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mailwright.log")

	logger, err := newLogger(config.LoggingConfig{
		Level:      "info",
		Format:     "json",
		Output:     "file",
		FilePath:   path,
		MaxSize:    1,
		MaxBackups: 1,
	})
	require.NoError(t, err)

	logger.Debug("dropped below level")
	logger.Info("job completed")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"job completed"`)
	assert.NotContains(t, string(data), "dropped below level")
}

func TestNewLogger_RejectsUnknownLevel(t *testing.T) {
	_, err := newLogger(config.LoggingConfig{Level: "verbose", Output: "stdout"})
	assert.Error(t, err)
}

func TestSchemaModels(t *testing.T) {
	assert.Len(t, schemaModels(), 6)
}
