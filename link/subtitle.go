package link

// Subtitle is a subtitle track discovered alongside links.
type Subtitle struct {
	// Language is a display label, e.g. "English".
	Language string `json:"language"`
	URL      string `json:"url"`
	// Headers needed to fetch the track, may be empty.
	Headers map[string]string `json:"headers,omitempty"`
}

func (s Subtitle) String() string {
	return s.Language
}
