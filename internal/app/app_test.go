package app

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGraph(t *testing.T, hcl string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.hcl")
	require.NoError(t, os.WriteFile(path, []byte(hcl), 0600))
	return path
}

func TestNewAppBuildsAndRunsAPrintGraph(t *testing.T) {
	graphPath := writeGraph(t, `
node "print" "a" {
  arguments {
    message = "hello from a"
  }
}

node "print" "b" {
  depends_on = ["a"]
  arguments {
    message = "hello from b"
  }
}
`)

	var out bytes.Buffer
	cfg, err := NewConfig(Config{
		GraphPath:   graphPath,
		WorkerCount: 2,
		ChunkCount:  8,
		LogFormat:   "text",
		LogLevel:    "error",
	})
	require.NoError(t, err)

	a := NewApp(&out, cfg)
	defer a.Close()

	assert.Equal(t, 2, a.graph.NodeCount())
	printed := captureStdout(t, func() {
		require.NoError(t, a.runOnce())
	})
	assert.Contains(t, printed, "hello from a")
	assert.Contains(t, printed, "hello from b")
}

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// what was written to it. The print job type writes its message with
// fmt.Println, so its output goes to os.Stdout, not to the App's outW.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	require.NoError(t, w.Close())
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestNewAppPanicsOnMissingGraphPath(t *testing.T) {
	cfg, err := NewConfig(Config{
		GraphPath:   filepath.Join(t.TempDir(), "does-not-exist.hcl"),
		WorkerCount: 1,
		ChunkCount:  4,
		LogFormat:   "text",
		LogLevel:    "error",
	})
	require.NoError(t, err)

	assert.Panics(t, func() {
		NewApp(&bytes.Buffer{}, cfg)
	})
}

func TestAppRunReportsStatistics(t *testing.T) {
	graphPath := writeGraph(t, `
node "print" "only" {
  arguments {
    message = "solo"
  }
}
`)

	var out bytes.Buffer
	cfg, err := NewConfig(Config{
		GraphPath:   graphPath,
		WorkerCount: 1,
		ChunkCount:  4,
		LogFormat:   "text",
		LogLevel:    "error",
	})
	require.NoError(t, err)

	a := NewApp(&out, cfg)
	defer a.Close()

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "worker 0")
}
