package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testpulse/internal/adapter"
	m "testpulse/internal/model"
)

func seedResults(t *testing.T, store *adapter.MemoryStore) {
	t.Helper()

	now := time.Now()
	for i := 0; i < 6; i++ {
		status := m.StatusPassed
		errorMessage := ""
		if i%3 == 0 {
			status = m.StatusFailed
			errorMessage = "assertion failed"
		}

		require.NoError(t, store.Append(m.TestCaseResult{
			TestName:     "TestRetry",
			TestSuite:    "API",
			Status:       status,
			Duration:     0.5,
			Timestamp:    now.AddDate(0, 0, -i),
			ErrorMessage: errorMessage,
		}))
	}
}

func TestReportCmd_WritesArtifacts(t *testing.T) {
	tempDir := chdirTemp(t)
	store := swapStore(t)
	seedResults(t, store)

	outputDir := filepath.Join(tempDir, "reports")

	cmd := newRootCmd()
	cmd.AddCommand(newReportCmd())
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"report", "-o", outputDir, "-f", "all", "-d", "30"})

	require.NoError(t, cmd.Execute())

	jsonPaths, err := filepath.Glob(filepath.Join(outputDir, "test_report_*.json"))
	require.NoError(t, err)
	require.Len(t, jsonPaths, 1)

	htmlPaths, err := filepath.Glob(filepath.Join(outputDir, "test_report_*.html"))
	require.NoError(t, err)
	require.Len(t, htmlPaths, 1)

	raw, err := os.ReadFile(jsonPaths[0])
	require.NoError(t, err)

	var report m.Report
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, 6, report.Summary.TotalTests)

	assert.Contains(t, out.String(), "Report written: "+jsonPaths[0])
	assert.Contains(t, out.String(), "Report written: "+htmlPaths[0])
}

func TestReportCmd_JSONOnly(t *testing.T) {
	tempDir := chdirTemp(t)
	store := swapStore(t)
	seedResults(t, store)

	outputDir := filepath.Join(tempDir, "reports")

	cmd := newRootCmd()
	cmd.AddCommand(newReportCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"report", "-o", outputDir, "-f", "json"})

	require.NoError(t, cmd.Execute())

	jsonPaths, err := filepath.Glob(filepath.Join(outputDir, "test_report_*.json"))
	require.NoError(t, err)
	assert.Len(t, jsonPaths, 1)

	htmlPaths, err := filepath.Glob(filepath.Join(outputDir, "test_report_*.html"))
	require.NoError(t, err)
	assert.Empty(t, htmlPaths)
}

func TestReportCmd_UnknownFormat(t *testing.T) {
	tempDir := chdirTemp(t)
	swapStore(t)

	cmd := newRootCmd()
	cmd.AddCommand(newReportCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"report", "-o", filepath.Join(tempDir, "reports"), "-f", "pdf"})

	assert.Error(t, cmd.Execute())
}

func TestReportCmd_RejectsPositionalArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.AddCommand(newReportCmd())
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"report", "extra"})

	assert.Error(t, cmd.Execute())
}
