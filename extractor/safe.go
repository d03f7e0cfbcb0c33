package extractor

import (
	"context"

	"github.com/anisan-cli/vidresolve/log"
)

// ReportFunc receives failures swallowed by Safe.
type ReportFunc func(error)

// Safe wraps an extractor so that its failures are reported and swallowed.
// Cancellation still propagates: if the context is done when Resolve
// returns an error, the context error is returned instead.
func Safe(e Extractor, report ReportFunc) Extractor {
	if report == nil {
		report = func(error) {}
	}

	return &safeExtractor{Extractor: e, report: report}
}

type safeExtractor struct {
	Extractor
	report ReportFunc
}

func (s *safeExtractor) Resolve(ctx context.Context, url, referer string, onLink LinkFunc, onSubtitle SubtitleFunc) error {
	err := s.Extractor.Resolve(ctx, url, referer, onLink, onSubtitle)
	if err == nil {
		return nil
	}

	if IsCancellation(err) {
		return err
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	s.report(err)
	return nil
}

// SafeResolve resolves url with e, logging every failure but cancellation.
func SafeResolve(ctx context.Context, e Extractor, url, referer string, onLink LinkFunc, onSubtitle SubtitleFunc) error {
	return Safe(e, log.Report).Resolve(ctx, url, referer, onLink, onSubtitle)
}
