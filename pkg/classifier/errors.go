package classifier

import "fmt"

// FilesystemError reports a directory or file that could not be read during a scan.
// A scan that hits one is aborted and returns no partial results.
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error {
	return e.Err
}
