package catalog

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Patterns for stripping episode markers from filenames
var (
	// "S01E01 - Title" / "Episode 3 - Title" / "Ep 3 - Title" prefixes
	patternEpisodePrefix = regexp.MustCompile(`(?i)^(S\d+E\d+|Episode\s*\d+|Ep\s*\d+)\s*[-_]\s*`)

	// "Title - S01E01" / "Title - Episode 3" suffixes
	patternEpisodeSuffix = regexp.MustCompile(`(?i)\s*[-_]\s*(S\d+E\d+|Episode\s*\d+|Ep\s*\d+)$`)

	patternSeparators = regexp.MustCompile(`[._]+`)
	patternSpaces     = regexp.MustCompile(`\s+`)
)

// FormatShowName cleans up a media filename for display: episode markers
// are stripped and separator noise is collapsed to single spaces.
func FormatShowName(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name = patternEpisodePrefix.ReplaceAllString(name, "")
	name = patternEpisodeSuffix.ReplaceAllString(name, "")
	name = patternSeparators.ReplaceAllString(name, " ")
	name = patternSpaces.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
