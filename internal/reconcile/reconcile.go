package reconcile

import (
	"fmt"

	"dirpatch/internal/record"
)

// Operation tags a record in a patch with what the patched side needs.
type Operation rune

const (
	Add       Operation = '+'
	Unchanged Operation = '='
	Conflict  Operation = '!'
)

// Operations lists every operation in a fixed order.
func Operations() []Operation {
	return []Operation{Add, Unchanged, Conflict}
}

// Symbol is the single character written in front of a rendered record.
func (o Operation) Symbol() string {
	return string(rune(o))
}

func (o Operation) String() string {
	switch o {
	case Add:
		return "ADD"
	case Unchanged:
		return "UNCHANGED"
	case Conflict:
		return "CONFLICT"
	default:
		return fmt.Sprintf("Operation(%q)", rune(o))
	}
}

// PatchResult holds, per operation, the records reported for one side.
// Each slice is ordered by path.
type PatchResult map[Operation][]record.FileRecord

// Summary counts the entries of a patch.
type Summary struct {
	Added      int
	Unchanged  int
	Conflicts  int
	AddedBytes int64
}

func (p PatchResult) Summary() Summary {
	s := Summary{
		Added:     len(p[Add]),
		Unchanged: len(p[Unchanged]),
		Conflicts: len(p[Conflict]),
	}
	for _, r := range p[Add] {
		s.AddedBytes += r.Size
	}
	return s
}

// HasChanges reports whether the side needs anything added or has conflicts.
func (p PatchResult) HasChanges() bool {
	return len(p[Add]) > 0 || len(p[Conflict]) > 0
}

type options struct {
	ignoreModTime bool
}

type Option func(*options)

// WithIgnoreModTime drops the modification time term from the equality
// test, so files with identical path, digest and size are always unchanged.
func WithIgnoreModTime(ignore bool) Option {
	return func(o *options) {
		o.ignoreModTime = ignore
	}
}

// Reconcile diffs two scans. The first patch describes side a: records from b
// that a lacks are ADD, and shared paths are UNCHANGED or CONFLICT with a's
// own record. The second patch is the mirror image for b.
func Reconcile(a, b record.ScanResult, opts ...Option) (PatchResult, PatchResult) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	equal := func(x, y record.FileRecord) bool { return x.Equal(y) }
	if o.ignoreModTime {
		equal = func(x, y record.FileRecord) bool { return x.SameContent(y) }
	}

	var unchanged, conflicts []string
	for _, path := range a.Paths() {
		recB, ok := b[path]
		if !ok {
			continue
		}
		if equal(a[path], recB) {
			unchanged = append(unchanged, path)
		} else {
			conflicts = append(conflicts, path)
		}
	}

	return generatePatch(a, b, unchanged, conflicts), generatePatch(b, a, unchanged, conflicts)
}

// generatePatch builds the patch for own given the other side and the shared
// classification. Every category is emitted in path order.
func generatePatch(own, other record.ScanResult, unchanged, conflicts []string) PatchResult {
	patch := PatchResult{
		Add:       make([]record.FileRecord, 0),
		Unchanged: make([]record.FileRecord, 0, len(unchanged)),
		Conflict:  make([]record.FileRecord, 0, len(conflicts)),
	}

	for _, path := range other.Paths() {
		if _, exists := own[path]; !exists {
			patch[Add] = append(patch[Add], other[path])
		}
	}
	for _, path := range unchanged {
		patch[Unchanged] = append(patch[Unchanged], mustGet(own, path))
	}
	for _, path := range conflicts {
		patch[Conflict] = append(patch[Conflict], mustGet(own, path))
	}

	return patch
}

func mustGet(scan record.ScanResult, path string) record.FileRecord {
	rec, ok := scan[path]
	if !ok {
		panic(fmt.Sprintf("reconcile: path %q missing from scan", path))
	}
	return rec
}
