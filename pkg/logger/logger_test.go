package logger

import (
	"errors"
	"io"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apressdl/pkg/config"
)

func TestNew(t *testing.T) {
	cfg := &config.LoggingConfig{Level: "debug"}

	log, err := New(cfg)
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &config.LoggingConfig{Level: "chatty"}

	_, err := New(cfg)
	assert.Error(t, err)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    zerolog.Level
		wantErr bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"ERROR", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"trace", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLogLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewDisabledLevelEmitsNothing(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	defer func() { os.Stdout = oldStdout }()

	log, err := New(&config.LoggingConfig{Level: "disabled"})
	require.NoError(t, err)

	log.Info("fetching products page")
	log.InfoWithFields("downloading product", map[string]interface{}{"title": "x"})
	log.Warn("no products found on page")
	log.Error("download run failed")

	require.NoError(t, w.Close())
	os.Stdout = oldStdout

	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, string(out), "disabled level must produce no output")
}

func TestWithFieldsImmutability(t *testing.T) {
	cfg := &config.LoggingConfig{Level: "info"}
	base, err := New(cfg)
	require.NoError(t, err)

	scoped := base.WithField("page", 1)
	require.NotSame(t, base, scoped)

	// Adding another field must not leak into the first scope
	scoped2 := scoped.WithField("product", "x")
	require.NotSame(t, scoped, scoped2)
}

func TestTestLoggerCapture(t *testing.T) {
	log := NewTestLogger()

	log.Info("fetching products page")
	log.WithField("page", 2).Warn("no rows found")
	log.WithError(errors.New("boom")).Error("download failed")

	msgs := log.Messages()
	require.Len(t, msgs, 3)

	assert.Equal(t, "INFO", msgs[0].Level)
	assert.Equal(t, "fetching products page", msgs[0].Message)

	warns := log.MessagesByLevel("WARN")
	require.Len(t, warns, 1)
	assert.Equal(t, 2, warns[0].Fields["page"])

	errs := log.MessagesByLevel("ERROR")
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0].Error, "boom")

	assert.True(t, log.HasMessageContaining("no rows"))
	assert.False(t, log.HasMessageContaining("nonexistent"))

	log.Clear()
	assert.Empty(t, log.Messages())
}
