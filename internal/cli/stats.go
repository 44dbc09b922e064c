package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/orizon-lang/lty/internal/allocator"
)

// FormatStats renders arena statistics for humans.
func FormatStats(s allocator.AllocatorStats) string {
	return fmt.Sprintf("%s (generation %d, %s resets): %s elements in %s chunks, %s in use, %s peak",
		s.Name,
		s.Generation,
		humanize.Comma(int64(s.Resets)),
		humanize.Comma(int64(s.Elements)),
		humanize.Comma(int64(s.Chunks)),
		humanize.IBytes(s.BytesInUse),
		humanize.IBytes(s.PeakBytes),
	)
}

// FormatSharing renders interner statistics.
func FormatSharing(hits, misses uint64, size int) string {
	total := hits + misses
	if total == 0 {
		return "interner: empty"
	}

	return fmt.Sprintf("interner: %s of %s nodes shared (%s%%), %s cached",
		humanize.Comma(int64(hits)),
		humanize.Comma(int64(total)),
		humanize.FormatFloat("#.#", 100*float64(hits)/float64(total)),
		humanize.Comma(int64(size)),
	)
}
