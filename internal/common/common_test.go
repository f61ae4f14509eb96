package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"validation", NewValidator().Check(false, "amount", -1, "must not be negative").Error(), codes.InvalidArgument},
		{"invalid input", fmt.Errorf("wrap: %w", ErrInvalidInput), codes.InvalidArgument},
		{"not found", NotFound("receipt", "abc"), codes.NotFound},
		{"already exists", AlreadyExists("receipt", "abc"), codes.AlreadyExists},
		{"transition", NewAppError(CodeTransition, "processed -> error", ErrInvalidTransition), codes.FailedPrecondition},
		{"other", errors.New("disk on fire"), codes.Internal},
		{"already a status", status.Error(codes.Unavailable, "later"), codes.Unavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(ToStatus(tt.err)))
		})
	}
	assert.NoError(t, ToStatus(nil))
}

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("vendor", "", Required).
		Field("vendor", "x", MaxLength(200)).
		Field("direction", "up", OneOf("asc", "desc")).
		Check(true, "ok", nil, "never reported")

	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 2)

	err := v.Error()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
	var ae *AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, CodeValidation, ae.Code)
	assert.Contains(t, ae.Message, "vendor")
	assert.Contains(t, ae.Message, "direction")

	assert.NoError(t, NewValidator().Field("vendor", "Walmart", Required).Error())
}

func TestExtractionFailureAndWarning(t *testing.T) {
	f := ExtractionFailure{Field: "amount", Reason: "no amount found"}
	assert.True(t, errors.Is(f, ErrExtraction))
	assert.Contains(t, f.Error(), "amount")

	w := EmptyInputWarning{FileName: "blank.png"}
	assert.True(t, errors.Is(w, ErrEmptyInput))
	assert.Contains(t, w.Error(), "blank.png")
}

func TestRequestID(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	require.NotEmpty(t, id)
	assert.Equal(t, id, RequestIDFromContext(ctx))

	again, same := EnsureRequestID(ctx)
	assert.Equal(t, id, same)
	assert.Equal(t, id, RequestIDFromContext(again))

	assert.Empty(t, RequestIDFromContext(context.Background()))
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("STORE_DRIVER", "bolt")
	t.Setenv("STORE_PATH", "/var/lib/receipts/receipts.bolt")
	t.Setenv("INGEST_ALLOWED_EXTS", " pdf, png ,,")
	t.Setenv("INGEST_MAX_FILE_SIZE", "2048")
	t.Setenv("INGEST_SKIP_HIDDEN", "false")
	t.Setenv("INGEST_WORKERS", "not-a-number")
	t.Setenv("EXTRACT_MIN_CONFIDENCE", "0.5")

	cfg := LoadConfig()
	assert.Equal(t, "bolt", cfg.Store.Driver)
	assert.Equal(t, "/var/lib/receipts/receipts.bolt", cfg.Store.Path)
	assert.Equal(t, []string{"pdf", "png"}, cfg.Ingest.AllowedExts)
	assert.Equal(t, int64(2048), cfg.Ingest.MaxFileSize)
	assert.False(t, cfg.Ingest.SkipHidden)
	assert.Equal(t, 4, cfg.Ingest.Workers)
	assert.InDelta(t, 0.5, cfg.Extraction.MinConfidence, 1e-9)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "mongo" }},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = "postgres"; c.Store.DSN = "" }},
		{"sqlite without path", func(c *Config) { c.Store.Driver = "sqlite"; c.Store.Path = "" }},
		{"no address", func(c *Config) { c.Server.GRPCAddr = "" }},
		{"zero size", func(c *Config) { c.Ingest.MaxFileSize = 0 }},
		{"no workers", func(c *Config) { c.Ingest.Workers = 0 }},
		{"confidence out of range", func(c *Config) { c.Extraction.MinConfidence = 1.5 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			cfg.Store.Driver = "memory"
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var ae *AppError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, CodeConfig, ae.Code)
		})
	}
}

func TestSetupLogger(t *testing.T) {
	_, err := SetupLogger("debug", "json", io.Discard)
	assert.NoError(t, err)
	_, err = SetupLogger("info", "xml", io.Discard)
	assert.Error(t, err)
	_, err = SetupLogger("chatty", "text", io.Discard)
	assert.Error(t, err)
}
