package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/fintk-dev/fintk/internal/config"
	"github.com/fintk-dev/fintk/internal/model"
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

func writeFileUTF8(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeFileLatin1(t *testing.T, dir, name, content string) string {
	t.Helper()
	encoded, err := charmap.ISO8859_1.NewEncoder().String(content)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func mustCompletion(t *testing.T, expr string, txType model.TxType, cat string) model.TxCompletion {
	t.Helper()
	c, err := model.NewTxCompletion(expr, txType, cat)
	require.NoError(t, err)
	return c
}

func testDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}
