package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/scconfig/pkg/scconfig/engine"
	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
)

func TestPrettyFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "/srv/www/site")
	assert.Contains(t, out, "/etc/scconfig/manifest.csv")
	assert.Contains(t, out, "Content Delivery")
	assert.Contains(t, out, "SOLR")
	assert.Contains(t, out, "Solr.config (Config)")
	assert.Contains(t, out, "needs disable | provider mismatch")
	assert.Contains(t, out, "OK 1")
	assert.Contains(t, out, "FAIL 1")
	assert.Contains(t, out, "250ms")

	// Only the failed record carries its trace.
	assert.Contains(t, out, "- error: file not found")
	assert.NotContains(t, out, "- provider mismatch")
}

func TestPrettyFormatter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PrettyFormatter{Verbose: true}).Format(&buf, sampleReport()))
	assert.Contains(t, buf.String(), "- provider mismatch")
}

func TestPrettyFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	r := &engine.Report{WebRoot: "/srv/www/site", Mode: types.ModeVerify}
	require.NoError(t, (&PrettyFormatter{}).Format(&buf, r))
	assert.Contains(t, buf.String(), "Manifest has no entries")
	assert.NotContains(t, buf.String(), "Manifest:")
}

func TestPlainFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PlainFormatter{}).Format(&buf, sampleReport()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "STATUS"))
	assert.True(t, strings.HasPrefix(lines[1], "OK"))
	assert.Contains(t, lines[1], "/srv/www/site/App_Config/Include/Solr.config ")
	assert.True(t, strings.HasPrefix(lines[3], "FAIL"))
	assert.Contains(t, lines[3], "App_Config/Include/Missing.config")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0s", "0ms"},
		{"250ms", "250ms"},
		{"1500ms", "1.5s"},
		{"90s", "1m 30s"},
		{"2h5m", "2h 5m"},
	}
	for _, tt := range tests {
		d, err := time.ParseDuration(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, formatDuration(d), tt.in)
	}
}
