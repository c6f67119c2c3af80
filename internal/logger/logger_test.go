package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestLogger_DefaultNop тестирует, что логгер работает до Init
func TestLogger_DefaultNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("сообщение")
		Warn("предупреждение")
		Error("ошибка", nil)
	})
}

// TestInit_File тестирует запись логов в файл
func TestInit_File(t *testing.T) {
	prev := Logger
	t.Cleanup(func() { Logger = prev })

	file := filepath.Join(t.TempDir(), "app.log")
	err := Init(Options{File: file, MaxSizeMB: 1})
	require.NoError(t, err)

	Info("запись в файл", zap.String("key", "value"))
	_ = Logger.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "запись в файл")
	assert.Contains(t, string(data), `"key":"value"`)
}
