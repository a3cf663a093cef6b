package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_EveryUpHasDown(t *testing.T) {
	files, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	names := make(map[string]bool, len(files))
	for _, f := range files {
		names[f] = true
	}

	for _, f := range files {
		if strings.HasSuffix(f, ".up.sql") {
			down := strings.TrimSuffix(f, ".up.sql") + ".down.sql"
			assert.True(t, names[down], "missing %s", down)
		}
	}
}
