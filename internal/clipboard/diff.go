package clipboard

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// UnifiedDiff generates a line diff between two clipboard contents.
// Returns empty string if they are identical.
func UnifiedDiff(fromLabel, toLabel, from, to string) string {
	if from == to {
		return ""
	}

	dmp := diffmatchpatch.New()

	// Line-mode diff for better output
	a, b, lineArray := dmp.DiffLinesToChars(from, to)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	patches := dmp.PatchMake(from, diffs)
	if len(patches) == 0 {
		return ""
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("--- %s\n", fromLabel))
	result.WriteString(fmt.Sprintf("+++ %s\n", toLabel))
	result.WriteString(dmp.PatchToText(patches))

	return result.String()
}
