package record

import (
	"fmt"
	"sort"
	"time"
)

// ModTimeTolerance is the largest modification-time difference two records
// may have and still be considered equal.
const ModTimeTolerance = time.Second

// DisplayTimeLayout is the timestamp layout used by String.
const DisplayTimeLayout = "2006-01-02 15:04:05"

// FileRecord describes one regular file of a scanned tree.
type FileRecord struct {
	Path       string // relative to the scan root, slash separated
	Digest     string // lowercase hex
	Size       int64
	ModifiedAt time.Time
}

// Equal reports whether two records describe the same file: identical path,
// digest and size, and modification times less than ModTimeTolerance apart.
func (r FileRecord) Equal(other FileRecord) bool {
	return r.SameContent(other) && absDuration(r.ModifiedAt.Sub(other.ModifiedAt)) < ModTimeTolerance
}

// SameContent is Equal without the modification time term.
func (r FileRecord) SameContent(other FileRecord) bool {
	return r.Path == other.Path &&
		r.Digest == other.Digest &&
		r.Size == other.Size
}

func (r FileRecord) String() string {
	return fmt.Sprintf("%s (%s | %d bytes)",
		r.Path,
		r.ModifiedAt.Format(DisplayTimeLayout),
		r.Size)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// ScanResult maps canonical path to record for one scanned root.
type ScanResult map[string]FileRecord

// Paths returns the keys of s in ascending order.
func (s ScanResult) Paths() []string {
	paths := make([]string, 0, len(s))
	for path := range s {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// TotalSize sums the sizes of every record.
func (s ScanResult) TotalSize() int64 {
	var total int64
	for _, r := range s {
		total += r.Size
	}
	return total
}
