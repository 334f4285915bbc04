package images

import (
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
	"golang.org/x/image/draw"
)

// blurHashSize is the target size for BlurHash computation.
// A small thumbnail produces nearly identical hashes in a fraction of the time.
const blurHashSize = 64

// ComputeBlurHash generates a BlurHash string for img.
// Uses 4x3 components for a good balance of size (~20-30 chars) and detail.
func ComputeBlurHash(img image.Image) (string, error) {
	thumbnail := resizeForBlurHash(img)

	// 4 horizontal, 3 vertical components - sweet spot for book covers
	hash, err := blurhash.Encode(4, 3, thumbnail)
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// resizeForBlurHash scales img to fit a blurHashSize square.
func resizeForBlurHash(img image.Image) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	if srcWidth <= blurHashSize && srcHeight <= blurHashSize {
		return img
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = blurHashSize
		dstHeight = max(1, srcHeight*blurHashSize/srcWidth)
	} else {
		dstHeight = blurHashSize
		dstWidth = max(1, srcWidth*blurHashSize/srcHeight)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
