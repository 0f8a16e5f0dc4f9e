package speech

import "strings"

// Segment is one spoken turn of a two-speaker script. Speaker 1 is the
// male host, speaker 2 the female co-host.
type Segment struct {
	Speaker int
	Text    string
}

var (
	speaker1Markers = []string{"Alex:", "Speaker 1:", "Host:", "Male:"}
	speaker2Markers = []string{"Sarah:", "Speaker 2:", "Guest:", "Female:"}
)

func containsAny(line string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

// ParseScript splits a two-speaker script into ordered segments. Lines
// carrying a known speaker marker are attributed directly; other labeled
// lines alternate starting with speaker 1; unlabeled lines continue the
// previous segment.
func ParseScript(script string) []Segment {
	var segments []Segment

	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case containsAny(line, speaker1Markers):
			_, text, _ := strings.Cut(line, ":")
			segments = append(segments, Segment{Speaker: 1, Text: strings.TrimSpace(text)})
		case containsAny(line, speaker2Markers):
			_, text, _ := strings.Cut(line, ":")
			segments = append(segments, Segment{Speaker: 2, Text: strings.TrimSpace(text)})
		case strings.Contains(line, ":"):
			_, text, _ := strings.Cut(line, ":")
			speaker := 1
			if len(segments)%2 != 0 {
				speaker = 2
			}
			segments = append(segments, Segment{Speaker: speaker, Text: strings.TrimSpace(text)})
		default:
			if len(segments) > 0 {
				last := &segments[len(segments)-1]
				last.Text = last.Text + " " + line
			} else {
				segments = append(segments, Segment{Speaker: 1, Text: line})
			}
		}
	}

	return segments
}
