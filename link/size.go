package link

import (
	"context"
	"errors"

	"github.com/samber/mo"
)

// ErrSizeUnsupported is returned when the size of a non-video link is requested.
var ErrSizeUnsupported = errors.New("size is only available for video links")

// Prober reports the content length of a remote resource.
type Prober interface {
	ContentLength(ctx context.Context, url string, headers map[string]string) (int64, error)
}

// Size returns the byte size of a video link, probing it once.
// The first successful result is kept for the lifetime of the link.
// Failures are not remembered.
func (l *Link) Size(ctx context.Context, prober Prober) (int64, error) {
	if l.typ != Video || l.IsPlaylist() {
		return 0, ErrSizeUnsupported
	}

	l.sizeMu.Lock()
	defer l.sizeMu.Unlock()

	if size, ok := l.size.Get(); ok {
		return size, nil
	}

	size, err := prober.ContentLength(ctx, l.url, l.EffectiveHeaders())
	if err != nil {
		return 0, err
	}

	l.size = mo.Some(size)
	return size, nil
}

// CachedSize returns the size if it was already resolved.
func (l *Link) CachedSize() mo.Option[int64] {
	l.sizeMu.Lock()
	defer l.sizeMu.Unlock()

	return l.size
}
