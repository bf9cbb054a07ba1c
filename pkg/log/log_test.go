package log

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_WritesJSONToConfiguredPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := Init(ZapConfig{Level: "info", Mode: "production", Encoding: "json", OutputPaths: []string{path}})
	ctx := context.Background()

	l.Debugf(ctx, "hidden %d", 1)
	l.Infof(ctx, "reminder fired for %s", "task-1")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "reminder fired for task-1")
	assert.NotContains(t, string(data), "hidden")
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	assert.NotPanics(t, func() {
		l.Error(context.Background(), "ignored")
		l.Warnf(context.Background(), "ignored %v", 1)
	})
}
