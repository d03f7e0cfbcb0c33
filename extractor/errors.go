package extractor

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoSources is returned when a page was fetched but held no media.
var ErrNoSources = errors.New("no sources found")

// ExtractionError is returned when an extractor could not parse
// or reach the upstream content.
type ExtractionError struct {
	Extractor string
	URL       string
	Err       error
}

// Errorf builds an ExtractionError for the given extractor and url.
func Errorf(e Identity, url, format string, args ...any) *ExtractionError {
	return &ExtractionError{
		Extractor: e.Name(),
		URL:       url,
		Err:       fmt.Errorf(format, args...),
	}
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: extract %s: %s", e.Extractor, e.URL, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// IsCancellation reports whether err stems from a cancelled or expired context.
func IsCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
