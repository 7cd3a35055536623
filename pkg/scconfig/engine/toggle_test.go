package engine

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/scconfig/pkg/scconfig/types"
)

func TestToggler_Names(t *testing.T) {
	t.Parallel()

	tg := NewToggler(afero.NewMemMapFs(), types.DefaultExtensionPolicy())

	tests := []struct {
		path    string
		enabled string
	}{
		{"/w/Solr.config.disable", "/w/Solr.config"},
		{"/w/Solr.config.DISABLED", "/w/Solr.config"},
		{"/w/Foo.example", "/w/Foo.config"},
		{"/w/Foo.config.example", "/w/Foo.config"},
		{"/w/Foo.xml", "/w/Foo.xml.config"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.enabled, tg.EnabledName(tt.path), tt.path)
	}

	assert.Equal(t, "/w/Solr.config.disabled", tg.DisabledName("/w/Solr.config"))
}

func TestToggler_DisableThenEnableRestoresName(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/w/Sitecore.Solr.config", []byte("x"), 0o644))
	tg := NewToggler(fs, types.DefaultExtensionPolicy())

	disabled, err := tg.Disable("/w/Sitecore.Solr.config")
	require.NoError(t, err)
	assert.Equal(t, "/w/Sitecore.Solr.config.disabled", disabled)

	enabled, err := tg.Enable(disabled)
	require.NoError(t, err)
	assert.Equal(t, "/w/Sitecore.Solr.config", enabled)

	data, err := afero.ReadFile(fs, enabled)
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}

func TestToggler_RefusesOverwrite(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/w/A.config", []byte("live"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/w/A.config.disabled", []byte("stale"), 0o644))
	tg := NewToggler(fs, types.DefaultExtensionPolicy())

	_, err := tg.Disable("/w/A.config")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRename)
	assert.ErrorIs(t, err, ErrTargetExists)

	var renameErr *RenameError
	require.ErrorAs(t, err, &renameErr)
	assert.Equal(t, "disable", renameErr.Op)

	data, err := afero.ReadFile(fs, "/w/A.config.disabled")
	require.NoError(t, err)
	assert.Equal(t, "stale", string(data))
}

func TestToggler_MissingSource(t *testing.T) {
	t.Parallel()

	tg := NewToggler(afero.NewMemMapFs(), types.DefaultExtensionPolicy())
	_, err := tg.Enable("/w/Gone.config.disabled")
	assert.ErrorIs(t, err, ErrRename)
	assert.Equal(t, KindRenameFailure, ErrorKind(err))
}
