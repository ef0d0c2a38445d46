package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/brizzai/backoffice/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggingConfig
		wantErr bool
	}{
		{name: "defaults", cfg: config.LoggingConfig{}},
		{name: "json", cfg: config.LoggingConfig{Level: "debug", Format: "json"}},
		{name: "bad level", cfg: config.LoggingConfig{Level: "loud"}, wantErr: true},
		{name: "bad format", cfg: config.LoggingConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "backoffice.log")

	l, err := NewLogger(&config.LoggingConfig{
		Level:          "info",
		Format:         "json",
		OutputPath:     path,
		DisableConsole: true,
	})
	require.NoError(t, err)

	l.Info("session cleared")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session cleared")
}

func TestGlobalHelpers(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	Debug("debug")
	Info("info")
	Warn("warn", zap.String("k", "v"))
	Error("error")

	require.Equal(t, 4, logs.Len())
	assert.Equal(t, "v", logs.All()[2].ContextMap()["k"])
}
