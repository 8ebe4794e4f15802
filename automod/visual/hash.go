package visual

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/corona10/goimagehash"
	_ "golang.org/x/image/webp"
)

const (
	DefaultHashSize  = 16
	DefaultThreshold = 0.3
	DefaultTimeout   = 10 * time.Second

	// larger hashes resize images to (size*size)^2 pixels before hashing
	MaxHashSize = 32
)

var (
	ErrInvalidConfig = errors.New("invalid image hash configuration")
	// returned (along with an empty set) when no reference images could be loaded. callers should treat this as a warning
	ErrEmptyReferenceSet = errors.New("no reference images loaded")
)

type HashConfig struct {
	// side length of the perceptual hash; hashes have HashSize*HashSize bits
	HashSize int
	// maximum normalized Hamming distance (0.0 to 1.0) which counts as a match
	Threshold float64
	// timeout for downloading a single image. zero means DefaultTimeout
	Timeout time.Duration
}

func DefaultHashConfig() HashConfig {
	return HashConfig{
		HashSize:  DefaultHashSize,
		Threshold: DefaultThreshold,
		Timeout:   DefaultTimeout,
	}
}

func (hc HashConfig) Validate() error {
	if hc.HashSize < 8 || hc.HashSize > MaxHashSize || hc.HashSize&(hc.HashSize-1) != 0 {
		return fmt.Errorf("%w: hash size must be a power of two, between 8 and %d (got %d)", ErrInvalidConfig, MaxHashSize, hc.HashSize)
	}
	if hc.Threshold < 0 || hc.Threshold > 1 {
		return fmt.Errorf("%w: threshold must be between 0 and 1 (got %f)", ErrInvalidConfig, hc.Threshold)
	}
	if hc.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	}
	return nil
}

// Computes the perceptual hash (pHash) of an image, with hashSize*hashSize bits.
func HashImage(img image.Image, hashSize int) (*goimagehash.ExtImageHash, error) {
	if img == nil {
		return nil, fmt.Errorf("nil image")
	}
	return goimagehash.ExtPerceptionHash(img, hashSize, hashSize)
}

// Decodes any supported image format (JPEG, PNG, GIF, WebP).
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// Normalized Hamming distance between two hashes: differing bits divided by hash length.
//
// Hashes of different kinds or lengths are not comparable, and return an error.
func Distance(a, b *goimagehash.ExtImageHash) (float64, error) {
	if a == nil || b == nil {
		return 0, fmt.Errorf("nil image hash")
	}
	d, err := a.Distance(b)
	if err != nil {
		return 0, err
	}
	if a.Bits() == 0 {
		return 0, fmt.Errorf("empty image hash")
	}
	return float64(d) / float64(a.Bits()), nil
}

// Hashes every image file in a directory (not recursive), in directory order.
//
// Files which can not be read or decoded as images are skipped. If no images could be loaded, the (empty) set is returned along with ErrEmptyReferenceSet.
func BuildReferenceSet(dir string, hashSize int, logger *slog.Logger) ([]*goimagehash.ExtImageHash, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading reference image directory: %w", err)
	}
	var hashes []*goimagehash.ExtImageHash
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		p := filepath.Join(dir, ent.Name())
		data, err := os.ReadFile(p)
		if err != nil {
			logger.Debug("skipping unreadable reference image", "path", p, "err", err)
			continue
		}
		img, err := DecodeImage(data)
		if err != nil {
			logger.Debug("skipping non-image reference file", "path", p, "err", err)
			continue
		}
		h, err := HashImage(img, hashSize)
		if err != nil {
			logger.Debug("failed to hash reference image", "path", p, "err", err)
			continue
		}
		hashes = append(hashes, h)
	}
	if len(hashes) == 0 {
		return hashes, ErrEmptyReferenceSet
	}
	logger.Info("built reference image set", "dir", dir, "count", len(hashes), "files", len(entries))
	return hashes, nil
}
