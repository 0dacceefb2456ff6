//go:build !unix

package classifier

import (
	"os"
	"path/filepath"
)

func dirIdentity(path string, info os.FileInfo) any {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}
