package visual

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/corona10/goimagehash"
	"github.com/hashicorp/go-cleanhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// some image hosts block requests which don't look like they come from a browser
const browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// larger images are not downloaded in full
const maxImageBytes = 20 * 1024 * 1024

// Matches images against a fixed set of reference perceptual hashes.
//
// The reference set is never modified after construction, so a HashMatcher is safe for concurrent use.
type HashMatcher struct {
	Logger *slog.Logger
	Client *http.Client

	config HashConfig
	refs   []*goimagehash.ExtImageHash
}

// Creates a matcher from an already-built reference set. Reference hashes must have been built with the same hash size as the config.
func NewHashMatcher(config HashConfig, refs []*goimagehash.ExtImageHash, logger *slog.Logger) (*HashMatcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	bits := config.HashSize * config.HashSize
	for i, h := range refs {
		if h == nil || h.Bits() != bits {
			return nil, fmt.Errorf("%w: reference hash %d does not match hash size %d", ErrInvalidConfig, i, config.HashSize)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	client := cleanhttp.DefaultPooledClient()
	client.Timeout = config.Timeout
	client.Transport = otelhttp.NewTransport(client.Transport)
	return &HashMatcher{
		Logger: logger,
		Client: client,
		config: config,
		refs:   refs,
	}, nil
}

// Builds the reference set from a directory of example images, then creates a matcher.
//
// An empty reference set is logged as a warning, not returned as an error: the resulting matcher never matches. Invalid configuration, or an unreadable directory, are errors.
func NewHashMatcherFromDir(config HashConfig, dir string, logger *slog.Logger) (*HashMatcher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	refs, err := BuildReferenceSet(dir, config.HashSize, logger)
	if errors.Is(err, ErrEmptyReferenceSet) {
		logger.Warn("image matcher has no reference images; it will never match", "dir", dir)
	} else if err != nil {
		return nil, err
	}
	return NewHashMatcher(config, refs, logger)
}

func (m *HashMatcher) ReferenceCount() int {
	return len(m.refs)
}

func (m *HashMatcher) Hash(img image.Image) (*goimagehash.ExtImageHash, error) {
	return HashImage(img, m.config.HashSize)
}

// Whether the image is within threshold distance of any reference image. Returns false for nil or unhashable images.
func (m *HashMatcher) Matches(img image.Image) bool {
	if img == nil {
		return false
	}
	h, err := m.Hash(img)
	if err != nil {
		m.Logger.Debug("failed to hash image", "err", err)
		return false
	}
	return m.matchHash(h)
}

// Decodes raw image bytes, then calls Matches. Undecodable data never matches.
func (m *HashMatcher) MatchesBytes(data []byte) bool {
	img, err := DecodeImage(data)
	if err != nil {
		m.Logger.Debug("failed to decode image", "err", err)
		return false
	}
	return m.Matches(img)
}

// compares against references in order, stopping at the first match
func (m *HashMatcher) matchHash(h *goimagehash.ExtImageHash) bool {
	for _, ref := range m.refs {
		dist, err := Distance(h, ref)
		if err != nil {
			m.Logger.Warn("incomparable image hashes", "err", err)
			continue
		}
		if dist <= m.config.Threshold {
			imageMatchCount.WithLabelValues("match").Inc()
			return true
		}
	}
	imageMatchCount.WithLabelValues("none").Inc()
	return false
}

// Downloads the image at the URL and calls MatchesBytes. Any network or decode failure is treated as no match.
func (m *HashMatcher) MatchesURL(ctx context.Context, url string) bool {
	data, err := m.download(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			// cancelled by caller, eg another image already matched
			m.Logger.Debug("image download cancelled", "url", url, "err", err)
		} else {
			m.Logger.Warn("failed to download image", "url", url, "err", err)
		}
		return false
	}
	return m.MatchesBytes(data)
}

func (m *HashMatcher) download(ctx context.Context, url string) ([]byte, error) {

	start := time.Now()
	defer func() {
		duration := time.Since(start)
		imageDownloadDuration.Observe(duration.Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", "image/avif,image/webp,image/png,image/jpeg,image/*;q=0.8,*/*;q=0.5")

	resp, err := m.Client.Do(req)
	if err != nil {
		imageDownloadCount.WithLabelValues("error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	imageDownloadCount.WithLabelValues(fmt.Sprint(resp.StatusCode)).Inc()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download failed: statusCode=%d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}
