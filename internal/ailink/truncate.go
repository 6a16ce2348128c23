package ailink

import "unicode/utf8"

// TruncationSuffix is appended to diffs cut to the configured size.
const TruncationSuffix = "\n\n... (diff truncated to prevent excessive API costs)"

// TruncateDiff cuts diff to at most maxSize characters and reports whether
// it did. A maxSize of zero or less disables truncation.
func TruncateDiff(diff string, maxSize int) (string, bool) {
	if maxSize <= 0 || utf8.RuneCountInString(diff) <= maxSize {
		return diff, false
	}
	count := 0
	for i := range diff {
		if count == maxSize {
			return diff[:i] + TruncationSuffix, true
		}
		count++
	}
	return diff, false
}
