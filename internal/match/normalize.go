package match

import "strings"

// Markers that AniDB appends to titles but filler-list titles omit (or the
// other way around). Removing them, rather than replacing them, keeps
// Normalize idempotent.
var titleMarkers = []string{
	" (tv)",
	" (ova)",
	" (movie)",
	" (special)",
	" (ona)",
	" season 1",
	" season 2",
	" season 3",
	" season 4",
	" season 5",
	" 1st season",
	" 2nd season",
	" 3rd season",
	" 4th season",
	" 5th season",
	" first season",
	" second season",
	" third season",
	" fourth season",
	" part 1",
	" part 2",
	" part i",
	" part ii",
	" the animation",
	" the movie",
}

// Normalize canonicalizes a title for comparison: lower-case, strip the
// marker list, strip a trailing "(2020)"-style year group, trim. Total and
// deterministic; never fails.
//
// Known rough edge: punctuation left adjacent to a removed marker stays
// ("Demon Slayer: The Movie" -> "demon slayer:").
func Normalize(title string) string {
	s := strings.ToLower(title)

	for _, marker := range titleMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}

	// Trailing year like " (2019)": exactly four digits in the last group.
	if idx := strings.LastIndex(s, " ("); idx >= 0 {
		digits := 0
		for _, r := range s[idx:] {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits == 4 {
			s = s[:idx]
		}
	}

	return strings.TrimSpace(s)
}
