package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/framescan/internal/entities"
	"github.com/MeKo-Tech/framescan/internal/geometry"
)

func writeTestDrawing(t *testing.T, dir, name string) string {
	t.Helper()

	col := &entities.Collection{
		Entities: []entities.Entity{
			entities.Polyline{
				Points: []geometry.Point{{X: 0, Y: 0}, {X: 420, Y: 0}, {X: 420, Y: 297}, {X: 0, Y: 297}},
				Closed: true,
			},
			entities.Text{Value: "中国核电工程有限公司", Insert: geometry.Point{X: 300, Y: 52}, Height: 3},
			entities.Text{Value: "CNPE", Insert: geometry.Point{X: 300, Y: 48}, Height: 3},
		},
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	require.NoError(t, entities.Encode(f, col))
	return path
}

func TestDetectCommand(t *testing.T) {
	assert.NotNil(t, detectCmd)
	assert.Equal(t, "detect [files...]", detectCmd.Use)
	assert.NotNil(t, detectCmd.Flags().Lookup("format"))
	assert.NotNil(t, detectCmd.Flags().Lookup("output"))
	assert.NotNil(t, detectCmd.Flags().Lookup("overlay-dir"))
}

func TestDetectCommandNoArgs(t *testing.T) {
	_, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"detect"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no input files")
}

func TestDetectCommandMissingFile(t *testing.T) {
	_, err := executeCommandAndCaptureOutput(t, rootCmd, []string{"detect", "does-not-exist.json"})
	assert.Error(t, err)
}

func TestDetectCommandProcessesDrawing(t *testing.T) {
	dir := t.TempDir()
	path := writeTestDrawing(t, dir, "plant.json")
	outFile := filepath.Join(dir, "results.json")

	_, err := executeCommandAndCaptureOutput(t, rootCmd,
		[]string{"detect", path, "--output", outFile})
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "plant.json")
	assert.Contains(t, string(data), "A3")
}

func TestDetectCommandInvalidLocateMode(t *testing.T) {
	dir := t.TempDir()
	path := writeTestDrawing(t, dir, "plant.json")

	_, err := executeCommandAndCaptureOutput(t, rootCmd,
		[]string{"detect", path, "--locate-mode", "nonsense"})
	assert.Error(t, err)
}

func TestBatchCommand(t *testing.T) {
	assert.NotNil(t, batchCmd)
	assert.NotNil(t, batchCmd.Flags().Lookup("workers"))
	assert.NotNil(t, batchCmd.Flags().Lookup("recursive"))
	assert.NotNil(t, batchCmd.Flags().Lookup("include"))
}

func TestBatchCommandProcessesDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTestDrawing(t, dir, "a.json")
	writeTestDrawing(t, dir, "b.json")
	outFile := filepath.Join(dir, "results.json")

	_, err := executeCommandAndCaptureOutput(t, rootCmd,
		[]string{"batch", dir, "--output", outFile, "--quiet"})
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "a.json")
	assert.Contains(t, string(data), "b.json")
}

func TestServeCommandFlags(t *testing.T) {
	assert.NotNil(t, serveCmd)
	assert.NotNil(t, serveCmd.Flags().Lookup("host"))
	assert.NotNil(t, serveCmd.Flags().Lookup("port"))
	assert.NotNil(t, serveCmd.Flags().Lookup("cors-origin"))
	assert.NotNil(t, serveCmd.Flags().Lookup("rate-limit-enabled"))
}
