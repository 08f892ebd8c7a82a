package progress

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Bar reports hashing progress across every scan sharing it. The total grows
// as each walk finishes, so the percentage may drop when a second root
// reports its file count.
type Bar struct {
	total      int64
	current    int64
	width      int
	writer     io.Writer
	mu         sync.Mutex
	roots      map[string]bool
	enabled    bool
	lastUpdate time.Time
}

func New(writer io.Writer, enabled bool) *Bar {
	return &Bar{
		width:      50,
		writer:     writer,
		roots:      make(map[string]bool),
		enabled:    enabled,
		lastUpdate: time.Now(),
	}
}

// IsTerminal reports whether f is a character device.
func IsTerminal(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// AddRoot registers a root being scanned along with its file count.
func (b *Bar) AddRoot(root string, files int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.roots[root] = true
	b.total += files
	if b.enabled {
		b.render()
	}
}

func (b *Bar) Increment() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current++
	if !b.enabled {
		return
	}

	// Update at most every 100ms to reduce flickering
	now := time.Now()
	if now.Sub(b.lastUpdate) > 100*time.Millisecond || b.current == b.total {
		b.lastUpdate = now
		b.render()
	}
}

// Current returns the number of files hashed so far.
func (b *Bar) Current() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

// Total returns the number of files registered so far.
func (b *Bar) Total() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

// render must be called with mu already locked
func (b *Bar) render() {
	if b.total == 0 {
		return
	}

	current := b.current
	if current > b.total {
		current = b.total
	}

	percent := float64(current) / float64(b.total) * 100
	filledWidth := int(float64(b.width) * float64(current) / float64(b.total))

	bar := strings.Repeat("█", filledWidth) + strings.Repeat("░", b.width-filledWidth)

	names := make([]string, 0, len(b.roots))
	for root := range b.roots {
		names = append(names, filepath.Base(root))
	}
	sort.Strings(names)

	var rootDisplay string
	if len(names) > 0 {
		rootDisplay = " | " + strings.Join(names, ", ")
	}

	// Clear the line and write progress
	fmt.Fprintf(b.writer, "\r\033[K[%s] %3d%% (%d/%d)%s",
		bar, int(percent), current, b.total, rootDisplay)
}

func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.enabled {
		return
	}

	b.current = b.total
	b.render()
	fmt.Fprintf(b.writer, "\n")
}
