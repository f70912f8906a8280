package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"github.com/sdko-org/loganalyzer/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"loganalyzer": func() int {
			return run(os.Args[1:], os.Stdout, os.Stderr)
		},
	}))
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir: "testdata/script",
	})
}

func TestRun_Sample(t *testing.T) {
	out := filepath.Join(t.TempDir(), "summary.csv")
	var stdout, stderr bytes.Buffer

	code := run([]string{"-threshold", "1", "-output", out, "../../internal/parser/testdata/sample.log"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	assert.Contains(t, stdout.String(), "/login (Accessed 2 times)")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[{'IP': '192.168.1.1', 'Failed login attempts': 2}]")
}

func TestRun_MissingInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-output", filepath.Join(t.TempDir(), "o.csv"), filepath.Join(t.TempDir(), "nope.log")}, &stdout, &stderr)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stderr.String(), "failed to open log file")
	assert.Empty(t, stdout.String())
}

func TestRun_UsageError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitUsage, run([]string{"-status", "7"}, &stdout, &stderr))
	assert.Equal(t, exitOK, run([]string{"-h"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: loganalyzer")
}

type fakeStorage struct {
	puts map[string][]byte
	ct   string
	err  error
}

func (f *fakeStorage) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	if f.err != nil {
		return f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if f.puts == nil {
		f.puts = make(map[string][]byte)
	}
	f.puts[key] = data
	f.ct = contentType
	return nil
}

func TestUploadReport(t *testing.T) {
	out := filepath.Join(t.TempDir(), "summary.csv")
	require.NoError(t, os.WriteFile(out, []byte("Metric,Value,Details\n"), 0o644))
	cfg := &config.Config{OutputPath: out, S3: config.S3Config{Prefix: "reports"}}

	t.Run("PutsReportUnderRunKey", func(t *testing.T) {
		dst := &fakeStorage{}
		require.NoError(t, uploadReport(context.Background(), dst, cfg, "run-42"))

		require.Contains(t, dst.puts, "reports/run-42/summary.csv")
		assert.Equal(t, "Metric,Value,Details\n", string(dst.puts["reports/run-42/summary.csv"]))
		assert.Equal(t, "text/csv", dst.ct)
	})

	t.Run("StorageErrorIsReturned", func(t *testing.T) {
		boom := errors.New("bucket gone")
		err := uploadReport(context.Background(), &fakeStorage{err: boom}, cfg, "run-42")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("MissingReport", func(t *testing.T) {
		missing := &config.Config{OutputPath: filepath.Join(t.TempDir(), "nope.csv")}
		dst := &fakeStorage{}
		err := uploadReport(context.Background(), dst, missing, "run-42")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read report for upload")
		assert.Empty(t, dst.puts)
	})
}
