package checks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// maxListed caps how many offenders a message names.
const maxListed = 5

type sizedPath struct {
	Path string
	Size int64
}

func kib(n int) int64 {
	return int64(n) * 1024
}

// HumanKiB renders a KiB threshold in IEC units, e.g. 5120 -> "5.0 MiB".
func HumanKiB(n int) string {
	return humanize.IBytes(uint64(kib(n)))
}

// sortSized returns a copy of items, largest first, ties broken by path.
func sortSized(items []sizedPath) []sizedPath {
	sorted := make([]sizedPath, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Size != sorted[j].Size {
			return sorted[i].Size > sorted[j].Size
		}
		return sorted[i].Path < sorted[j].Path
	})
	return sorted
}

// formatSized lists the largest offenders first.
func formatSized(items []sizedPath) string {
	sorted := sortSized(items)

	parts := make([]string, 0, maxListed)
	for i, it := range sorted {
		if i == maxListed {
			break
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", it.Path, humanize.IBytes(uint64(it.Size))))
	}
	return strings.Join(parts, ", ") + moreSuffix(len(sorted))
}

func formatNames(names []string) string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.Strings(sorted)

	if len(sorted) > maxListed {
		return strings.Join(sorted[:maxListed], ", ") + moreSuffix(len(sorted))
	}
	return strings.Join(sorted, ", ")
}

func moreSuffix(n int) string {
	if n <= maxListed {
		return ""
	}
	return fmt.Sprintf(" (+%d more)", n-maxListed)
}

func truncationNote(truncated bool, limit int) string {
	if !truncated {
		return ""
	}
	return fmt.Sprintf("; scan truncated at %d objects", limit)
}

// displayPath names an object by path, falling back to a short id.
func displayPath(path, id string) string {
	if path != "" {
		return path
	}
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
