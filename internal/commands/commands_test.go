package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/fintk-dev/fintk/internal/config"
)

func newTestConfig(t *testing.T) *config.Configuration {
	t.Helper()
	return &config.Configuration{
		CategorySet:        map[string]struct{}{},
		CategoriesToRename: map[string]string{},
		RootDir:            t.TempDir(),
		DownloadDir:        t.TempDir(),
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeLatin1(t *testing.T, dir, name, content string) string {
	t.Helper()
	encoded, err := charmap.ISO8859_1.NewEncoder().String(content)
	require.NoError(t, err)
	return writeFile(t, dir, name, encoded)
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}
