package logger

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shop-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LoggerConfig
		wantErr bool
	}{
		{"json", config.LoggerConfig{Level: "info", Format: "json"}, false},
		{"console development", config.LoggerConfig{Level: "debug", Format: "console", Development: true, EnableColor: true}, false},
		{"bad format", config.LoggerConfig{Level: "info", Format: "xml"}, true},
		{"bad level", config.LoggerConfig{Level: "loud", Format: "json"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNew_RotatingFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.log")
	l, err := New(&config.LoggerConfig{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{path},
		MaxSizeMB:   1,
	})
	require.NoError(t, err)

	l.Info("written to file")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestLogFault(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	l := &Logger{Logger: zap.New(core)}

	l.LogFault("CreateProduct", 531, "Duplicate information", "wrapped", errors.New("UNIQUE constraint failed: products.sku"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "CreateProduct", fields["action"])
	assert.Equal(t, int64(531), fields["status_code"])
	assert.Equal(t, "Duplicate information", fields["client_message"])
	assert.Equal(t, "wrapped", fields["fault_kind"])
	assert.Contains(t, fields["error"], "UNIQUE constraint failed")
}

func TestWithHelpers(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	l := &Logger{Logger: zap.New(core)}

	l.WithRequestID("req-1").WithComponent("http").WithOperation("ListProducts").Info("done")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "http", fields["component"])
	assert.Equal(t, "ListProducts", fields["operation"])
}

func TestGlobal(t *testing.T) {
	nop := NewNop()
	SetGlobal(nop)
	assert.Same(t, nop, GetGlobal())
	assert.NotPanics(t, func() { Info("quiet") })
}
