package trace

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for _, s := range Statuses {
		got, err := ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseStatus(" failed ")
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, got)

	_, err = ParseStatus("maybe")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestBuilder_StartsNotApplicable(t *testing.T) {
	t.Parallel()

	rec := NewBuilder("Solr [SOLR]", "App_Config/Include/Solr.config", "SOLR").Build()
	assert.Equal(t, StatusNotApplicable, rec.Status)
	assert.Equal(t, "App_Config/Include/Solr.config", rec.ManifestRelativePath)
	assert.Empty(t, rec.ProcessingTrace)
}

func TestBuilder_BuildIsImmutable(t *testing.T) {
	t.Parallel()

	b := NewBuilder("d", "p", "Any")
	b.Note("first")
	rec := b.Build()

	b.Note("second").Finish(StatusOK, "done")

	assert.Equal(t, []string{"first"}, rec.ProcessingTrace)
	assert.Equal(t, StatusNotApplicable, rec.Status)
	assert.True(t, b.Built())
}

func TestBuilder_Fail(t *testing.T) {
	t.Parallel()

	base := errors.New("permission denied")
	err := fmt.Errorf("renaming file: %w", base)

	rec := NewBuilder("d", "p", "Lucene").Note("resolving").Fail("RenameError", err).Build()

	assert.Equal(t, StatusFailed, rec.Status)
	assert.Equal(t, "renaming file: permission denied", rec.StatusDetails)
	assert.Equal(t, "RenameError", rec.Error)
	assert.Equal(t, []string{
		"resolving",
		"error: renaming file: permission denied",
		"error: permission denied",
	}, rec.ProcessingTrace)
}

func TestRecord_Changed(t *testing.T) {
	t.Parallel()

	assert.False(t, Record{RealFilePath: "a.config"}.Changed())
	assert.True(t, Record{RealFilePath: "a.config", NewFilePath: "a.config.disabled"}.Changed())
}

func TestRecord_JSON(t *testing.T) {
	t.Parallel()

	rec := NewBuilder("d", "p", "SOLR").Finish(StatusActionRequired, "needs to be enabled").Build()

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"ACTION"`)

	var decoded Record
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, StatusActionRequired, decoded.Status)
	assert.Equal(t, "needs to be enabled", decoded.StatusDetails)
}
