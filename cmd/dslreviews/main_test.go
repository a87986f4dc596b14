package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pevans/dslreviews/config"
	"github.com/pevans/dslreviews/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reviewPage = `<html><body>
<div>
  <a name="review501"></a>
  <div>Fast and cheap</div>
  <div>lodged 2 years ago</div>
  <table><tr>
    <td>
      <div>Review by dave</div>
      <a href="/u/dave">dave</a><a name="501"></a>
      <ul><li>Location: Portland, OR</li><li>Cost: $30</li><li>Install: 2 days</li></ul>
      <img alt="Telco party" src="/t.gif"><b>Gamma Broadband</b>
    </td>
    <td>
      <b>Tech Support</b>:<img src="//i.dslr.net/bars/40_sm.gif">
      <b>Services</b>:<img src="//i.dslr.net/bars/30_sm.gif">
    </td>
  </tr></table>
</div>
</body></html>`

// Test helper: isolate the CLI from the user's config and environment
func isolate(t *testing.T) string {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, key := range []string{
		config.EnvDSN, config.EnvFetchTimeout, config.EnvUserAgent,
		config.EnvFormat, config.EnvLogLevel,
	} {
		t.Setenv(key, "")
	}
	return dir
}

// Test helper: write a page into dir
func writePage(t *testing.T, dir, name, body string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// Test helper: run the CLI and return stdout and stderr
func run(t *testing.T, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// TestExtract_CSV verifies CSV output for one page
func TestExtract_CSV(t *testing.T) {
	dir := isolate(t)
	path := writePage(t, dir, "page.html", reviewPage)

	stdout, _, err := run(t, "extract", path)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(stdout)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, review.Columns, rows[0])
	assert.Equal(t, []string{
		"dave", "501", "2 years", "Portland, OR", "30", "2", "Gamma Broadband",
		"", "", "", "40", "30", "",
	}, rows[1])
}

// TestExtract_JSONWithDates verifies the review_date column
func TestExtract_JSONWithDates(t *testing.T) {
	dir := isolate(t)
	path := writePage(t, dir, "page.html", reviewPage)

	stdout, _, err := run(t, "extract", "-f", "json", "--resolve-dates", "--now", "2024-01-10", path)
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "2022-01-09", rows[0][review.FieldReviewDate])
	assert.Equal(t, "Gamma Broadband", rows[0][review.FieldProvider])
}

// TestExtract_EmptyPageSkipped verifies pages without reviews add no rows
func TestExtract_EmptyPageSkipped(t *testing.T) {
	dir := isolate(t)
	empty := writePage(t, dir, "empty.html", "<html><body><p>nothing</p></body></html>")
	full := writePage(t, dir, "page.html", reviewPage)

	stdout, stderr, err := run(t, "extract", "-f", "json", empty, full)
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	assert.Len(t, rows, 1)
	assert.Contains(t, stderr, "No reviews in this page")
}

// TestExtract_OutputFile verifies -o writes to a file
func TestExtract_OutputFile(t *testing.T) {
	dir := isolate(t)
	path := writePage(t, dir, "page.html", reviewPage)
	out := filepath.Join(dir, "reviews.csv")

	stdout, _, err := run(t, "extract", "-o", out, path)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Gamma Broadband")
}

// TestExtract_BadFormat verifies unknown formats are rejected
func TestExtract_BadFormat(t *testing.T) {
	dir := isolate(t)
	path := writePage(t, dir, "page.html", reviewPage)

	_, _, err := run(t, "extract", "-f", "xml", path)
	assert.Error(t, err)
}

// TestExtract_MissingFile verifies load failures are reported
func TestExtract_MissingFile(t *testing.T) {
	dir := isolate(t)

	_, _, err := run(t, "extract", filepath.Join(dir, "missing.html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.html")
}

// TestResolve verifies the resolve command
func TestResolve(t *testing.T) {
	isolate(t)

	stdout, _, err := run(t, "resolve", "3", "days", "--now", "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-07\n", stdout)

	stdout, _, err = run(t, "resolve", "2 years", "--now", "2024-01-10")
	require.NoError(t, err)
	assert.Equal(t, "2022-01-09\n", stdout)
}

// TestResolve_Unrecognized verifies unknown units fail
func TestResolve_Unrecognized(t *testing.T) {
	isolate(t)

	stdout, _, err := run(t, "resolve", "5 widgets")
	require.Error(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, err.Error(), "unrecognized elapsed time")
}

// TestImportAndList verifies reviews saved by import are listed
func TestImportAndList(t *testing.T) {
	dir := isolate(t)
	path := writePage(t, dir, "page.html", reviewPage)
	dsn := filepath.Join(dir, "reviews.db")

	stdout, _, err := run(t, "--dsn", dsn, "import", path, path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Imported 2 reviews from 2 pages")

	stdout, _, err = run(t, "--dsn", dsn, "list", "-f", "json", "--limit", "1")
	require.NoError(t, err)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "501", rows[0][review.FieldReviewID])
	assert.Contains(t, rows[0], review.FieldReviewDate)

	stdout, _, err = run(t, "--dsn", dsn, "list", "-f", "csv", "--provider", "Nobody")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(stdout, "\n"), "should print only the header")
}
