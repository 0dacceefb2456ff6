//go:build unix

package classifier

import (
	"os"
	"path/filepath"
	"syscall"
)

type inode struct {
	dev uint64
	ino uint64
}

// dirIdentity returns device and inode for OS-backed directories and falls
// back to the cleaned path for in-memory filesystems.
func dirIdentity(path string, info os.FileInfo) any {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return inode{dev: uint64(st.Dev), ino: uint64(st.Ino)}
	}
	return filepath.Clean(path)
}
