package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathsFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&PathsFormatter{}).Format(&buf, sampleReport()))
	assert.Equal(t,
		"/srv/www/site/App_Config/Include/Solr.config\n"+
			"/srv/www/site/App_Config/Include/Lucene.config\n",
		buf.String())
}

func TestNullFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&NullFormatter{}).Format(&buf, sampleReport()))
	assert.Equal(t,
		"/srv/www/site/App_Config/Include/Solr.config\x00"+
			"/srv/www/site/App_Config/Include/Lucene.config\x00",
		buf.String())
}
