package link

import (
	"fmt"
	"strconv"
	"strings"
)

// Quality is a named resolution tier. The numeric value is the pixel height
// and is what links carry on the wire.
type Quality int

const (
	Unknown Quality = 400
	P144    Quality = 144
	P240    Quality = 240
	P360    Quality = 360
	P480    Quality = 480
	P720    Quality = 720
	P1080   Quality = 1080
	P1440   Quality = 1440
	P2160   Quality = 2160
)

// Qualities lists the named tiers in ascending priority.
var Qualities = []Quality{P144, P240, P360, P480, Unknown, P720, P1080, P1440, P2160}

var qualityPriority = map[Quality]int{
	P144:    0,
	P240:    2,
	P360:    3,
	P480:    4,
	Unknown: 4,
	P720:    5,
	P1080:   6,
	P1440:   7,
	P2160:   8,
}

// Priority returns the sort rank of a quality value.
// Unknown ranks alongside 480p. Custom values take the rank
// of the closest named tier below them.
func Priority(q int) int {
	if p, ok := qualityPriority[Quality(q)]; ok {
		return p
	}

	rank := -1
	for tier, p := range qualityPriority {
		if tier == Unknown {
			continue
		}

		if int(tier) <= q && p > rank {
			rank = p
		}
	}

	return rank
}

// QualityName returns a display label for a quality value.
func QualityName(q int) string {
	switch Quality(q) {
	case Unknown:
		return "Unknown"
	case P2160:
		return "4K"
	default:
		return fmt.Sprintf("%dp", q)
	}
}

func (q Quality) String() string {
	return QualityName(int(q))
}

// ParseQuality maps a free-text quality label to its numeric value.
// An empty or unparsable label yields Unknown. Any integer is accepted.
func ParseQuality(label string) int {
	label = strings.TrimSpace(strings.ReplaceAll(strings.ToLower(label), "p", ""))
	if label == "4k" {
		return int(P2160)
	}

	q, err := strconv.Atoi(label)
	if err != nil {
		return int(Unknown)
	}

	return q
}
