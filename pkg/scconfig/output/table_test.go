package output

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/scconfig/pkg/scconfig/trace"
)

func TestTSVFormatter(t *testing.T) {
	r := sampleReport()
	r.Records[3].StatusDetails = "line one\nline\ttwo"

	var buf bytes.Buffer
	require.NoError(t, (&TSVFormatter{}).Format(&buf, r))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "STATUS\tENTRY\tPROVIDER\tFILE\tNEW_FILE\tDETAILS", lines[0])

	fields := strings.Split(lines[4], "\t")
	require.Len(t, fields, 6)
	assert.Equal(t, "NA", fields[0])
	assert.Equal(t, "line one line two", fields[5])
}

func TestCSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&CSVFormatter{}).Format(&buf, sampleReport()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, tableHeader, rows[0])
	assert.Equal(t, []string{
		"OK",
		"Search: App_Config/Include/Solr.config (Config) [SOLR]",
		"SOLR",
		"/srv/www/site/App_Config/Include/Solr.config.disabled",
		"/srv/www/site/App_Config/Include/Solr.config",
		"enabled",
	}, rows[1])
}

func TestMarkdownFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&MarkdownFormatter{}).Format(&buf, sampleReport()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "| STATUS | ENTRY | PROVIDER | FILE | NEW_FILE | DETAILS |\n|---|---|---|---|---|---|\n"))
	assert.Contains(t, out, `needs disable \| provider mismatch`)
	assert.Contains(t, out, "4 entries: 1 OK, 1 ACTION, 1 FAIL, 1 NA, 1 renamed")
}

func TestTableRow(t *testing.T) {
	row := tableRow(trace.Record{Status: trace.StatusFailed, ManifestDescription: "x"})
	assert.Equal(t, []string{"FAIL", "x", "", "", "", ""}, row)
}
