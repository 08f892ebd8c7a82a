package report

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"dirpatch/internal/render"
)

// DefaultFileName is the report name used when none is configured.
const DefaultFileName = "reference.patch"

// Sink writes reports into a filesystem. Partial output is left in place
// when a write fails.
type Sink struct {
	fs billy.Filesystem
}

func NewSink(fs billy.Filesystem) *Sink {
	return &Sink{fs: fs}
}

// ForPath returns a sink rooted at the directory of outputPath together with
// the file name to write there.
func ForPath(outputPath string) (*Sink, string, error) {
	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get absolute path: %w", err)
	}
	return NewSink(osfs.New(filepath.Dir(absPath))), filepath.Base(absPath), nil
}

// Write creates or truncates name and writes the report to it.
func (s *Sink) Write(name string, header render.Header, sections ...[]string) (err error) {
	f, err := s.fs.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close report: %w", cerr)
		}
	}()

	if err := render.WriteReport(f, header, sections...); err != nil {
		return err
	}
	return nil
}

// Path returns the location of name inside the sink's filesystem.
func (s *Sink) Path(name string) string {
	return s.fs.Join(s.fs.Root(), name)
}
