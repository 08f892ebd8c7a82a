package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func base() FileRecord {
	return FileRecord{
		Path:       "dir/file.txt",
		Digest:     "5d41402abc4b2a76b9719d911017c592",
		Size:       5,
		ModifiedAt: time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC),
	}
}

func TestFileRecord_Equal(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*FileRecord)
		want   bool
	}{
		{name: "identical", modify: func(*FileRecord) {}, want: true},
		{name: "sub-second drift", modify: func(r *FileRecord) { r.ModifiedAt = r.ModifiedAt.Add(900 * time.Millisecond) }, want: true},
		{name: "negative sub-second drift", modify: func(r *FileRecord) { r.ModifiedAt = r.ModifiedAt.Add(-999 * time.Millisecond) }, want: true},
		{name: "exactly one second", modify: func(r *FileRecord) { r.ModifiedAt = r.ModifiedAt.Add(time.Second) }, want: false},
		{name: "two seconds", modify: func(r *FileRecord) { r.ModifiedAt = r.ModifiedAt.Add(2 * time.Second) }, want: false},
		{name: "different digest", modify: func(r *FileRecord) { r.Digest = "7d793037a0760186574b0282f2f435e7" }, want: false},
		{name: "different size", modify: func(r *FileRecord) { r.Size = 6 }, want: false},
		{name: "different path", modify: func(r *FileRecord) { r.Path = "dir/File.txt" }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := base()
			b := base()
			tt.modify(&b)

			assert.Equal(t, tt.want, a.Equal(b))
			assert.Equal(t, a.Equal(b), b.Equal(a), "equality must be symmetric")
		})
	}
}

func TestFileRecord_SameContentIgnoresModTime(t *testing.T) {
	a := base()
	b := base()
	b.ModifiedAt = b.ModifiedAt.Add(time.Hour)

	assert.True(t, a.SameContent(b))
	assert.False(t, a.Equal(b))
}

func TestFileRecord_String(t *testing.T) {
	assert.Equal(t, "dir/file.txt (2024-03-01 12:30:45 | 5 bytes)", base().String())
}

func TestScanResult_PathsSorted(t *testing.T) {
	s := ScanResult{
		"b":     {Path: "b", Size: 2},
		"B":     {Path: "B", Size: 3},
		"a/z":   {Path: "a/z", Size: 4},
		"a.txt": {Path: "a.txt", Size: 1},
	}

	assert.Equal(t, []string{"B", "a.txt", "a/z", "b"}, s.Paths())
	assert.Equal(t, int64(10), s.TotalSize())
}
