package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeKit/internal/export"
	"resumeKit/internal/render/docx"
)

const sampleResume = `{
	"title": "Platform CV",
	"summary": "Builds reliable systems.",
	"personal_info": {"full_name": "Jane Doe", "email": "jane@example.com"},
	"experience": [{"company": "Acme", "position": "Engineer", "start_date": "2020-01-01", "current": true}],
	"skills": [{"name": "Go", "category": "Languages"}]
}`

func TestParseFormats(t *testing.T) {
	got, err := parseFormats("ats-pdf, ATS-DOCX")
	require.NoError(t, err)
	assert.Equal(t, []export.Format{export.FormatATSPDF, export.FormatATSDOCX}, got)

	got, err = parseFormats("all")
	require.NoError(t, err)
	assert.Equal(t, export.Formats, got)

	_, err = parseFormats("pptx")
	assert.True(t, export.IsPrecondition(err))

	_, err = parseFormats(" , ")
	assert.Error(t, err)
}

func TestRunWritesATSExports(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	err := run(context.Background(), logger, options{
		in:      "-",
		formats: []export.Format{export.FormatATSPDF, export.FormatATSDOCX},
		out:     dir,
	}, strings.NewReader(sampleResume), &stdout)
	require.NoError(t, err)

	pdfs, _ := filepath.Glob(filepath.Join(dir, "Platform CV_*.pdf"))
	require.Len(t, pdfs, 1)
	data, err := os.ReadFile(pdfs[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	docs, _ := filepath.Glob(filepath.Join(dir, "Platform CV_*.docx"))
	require.Len(t, docs, 1)
	data, err = os.ReadFile(docs[0])
	require.NoError(t, err)
	texts, err := docx.ExtractText(data)
	require.NoError(t, err)
	assert.Contains(t, texts, "Jane Doe")

	assert.Equal(t, 2, strings.Count(stdout.String(), "\n"))
}

func TestRunRejectsInvalidDocument(t *testing.T) {
	err := run(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), options{
		in:      "-",
		formats: []export.Format{export.FormatATSPDF},
		out:     t.TempDir(),
	}, strings.NewReader(`{"experience": "none"}`), io.Discard)
	require.Error(t, err)
}
