// Package images resizes uploaded book pictures and computes their
// placeholder hashes.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"mime"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp" // Register BMP decoder
)

// Defaults for the bounding box and encoder quality.
const (
	DefaultMinWidth  = 196
	DefaultMinHeight = 196
	DefaultQuality   = 75

	// maxPixels bounds the decoded size of an upload.
	maxPixels = 50_000_000
)

var (
	// ErrUnsupported is returned for content types outside the allow-list.
	ErrUnsupported = errors.New("unsupported image type")
	// ErrFormatMismatch is returned when the bytes are not in the declared format.
	ErrFormatMismatch = errors.New("image content does not match its content type")
	// ErrTooManyPixels is returned for images whose decoded size exceeds maxPixels.
	ErrTooManyPixels = errors.New("image dimensions are too large")
)

// formats maps the accepted content types to their codecs.
var formats = map[string]imaging.Format{
	"image/bmp":  imaging.BMP,
	"image/gif":  imaging.GIF,
	"image/jpeg": imaging.JPEG,
	"image/png":  imaging.PNG,
}

// decoderNames maps the names image.Decode reports to codecs.
var decoderNames = map[string]imaging.Format{
	"bmp":  imaging.BMP,
	"gif":  imaging.GIF,
	"jpeg": imaging.JPEG,
	"png":  imaging.PNG,
}

// Options controls Resize.
type Options struct {
	MinWidth  int
	MinHeight int
	// Quality is the JPEG quality, 1-100. Other codecs ignore it.
	Quality int
}

func (o Options) withDefaults() Options {
	if o.MinWidth <= 0 {
		o.MinWidth = DefaultMinWidth
	}
	if o.MinHeight <= 0 {
		o.MinHeight = DefaultMinHeight
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = DefaultQuality
	}
	return o
}

// Result is an encoded picture.
type Result struct {
	Content     []byte
	ContentType string
	Width       int
	Height      int
	BlurHash    string
}

// MediaType returns the lower-cased media type of a Content-Type header
// value without parameters.
func MediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// IsSupported reports whether contentType is on the allow-list.
func IsSupported(contentType string) bool {
	_, ok := formats[MediaType(contentType)]
	return ok
}

// TargetSize returns the output size for a w×h source. Wide sources are
// scaled so their height is minH, tall and square ones so their width is
// minW. Sources already at or below the box keep their size.
func TargetSize(w, h, minW, minH int) (int, int) {
	if w > h {
		if h > minH {
			return max(1, w*minH/h), minH
		}
		return w, h
	}
	if w > minW {
		return minW, max(1, h*minW/w)
	}
	return w, h
}

// Resize decodes data, fits it to the bounding box and re-encodes it in its
// own format. The returned bytes are complete; nothing is returned on error.
func Resize(data []byte, contentType string, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	mt := MediaType(contentType)
	format, ok := formats[mt]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, mt)
	}

	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image config: %w", err)
	}
	if decoderNames[name] != format {
		return nil, fmt.Errorf("%w: declared %s, got %s", ErrFormatMismatch, mt, name)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	b := src.Bounds()
	w, h := TargetSize(b.Dx(), b.Dy(), opts.MinWidth, opts.MinHeight)

	var dst *image.NRGBA
	if w == b.Dx() && h == b.Dy() {
		dst = imaging.Clone(src)
	} else {
		dst = imaging.Resize(src, w, h, imaging.CatmullRom)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, dst, format, imaging.JPEGQuality(opts.Quality)); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	hash, err := ComputeBlurHash(dst)
	if err != nil {
		// A missing placeholder never fails an upload.
		hash = ""
	}

	return &Result{
		Content:     buf.Bytes(),
		ContentType: mt,
		Width:       w,
		Height:      h,
		BlurHash:    hash,
	}, nil
}
