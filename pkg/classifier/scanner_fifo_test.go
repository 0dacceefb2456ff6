//go:build linux || darwin || freebsd || netbsd || openbsd

package classifier

import (
	"context"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScan_SkipsNonRegularFiles(t *testing.T) {
	root := t.TempDir()
	if err := syscall.Mkfifo(filepath.Join(root, "logo.pipe"), 0644); err != nil {
		t.Skipf("fifos not supported: %v", err)
	}
	writeMemFile(t, afero.NewOsFs(), filepath.Join(root, "logo.png"), 4)

	scanner := New(afero.NewOsFs(), root, Options{}, newTestLogger())
	matches, err := scanner.Scan(context.Background(), "logo")
	require.NoError(t, err)

	assert.Equal(t, []string{"logo.png"}, names(matches))
}
