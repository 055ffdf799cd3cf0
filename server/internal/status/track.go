package status

import "strings"

// trackSep separates artist and title in the status file.
const trackSep = "||"

// unknownPart marks an artist or title the writer could not determine.
const unknownPart = "?"

// Track is a parsed status line.
type Track struct {
	Artist string `json:"artist"`
	Title  string `json:"title"`
}

// ParseTrack splits "artist || title". The first field is the artist and the
// second the title; any further fields are ignored. Content without a
// separator is all artist. Parts equal to "?" are reported empty.
func ParseTrack(content string) Track {
	parts := strings.Split(content, trackSep)
	t := Track{Artist: clean(parts[0])}
	if len(parts) > 1 {
		t.Title = clean(parts[1])
	}
	return t
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	if s == unknownPart {
		return ""
	}
	return s
}
