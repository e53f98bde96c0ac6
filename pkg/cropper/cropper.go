package cropper

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/inecosys/utilitytool/pkg/types"
)

// ErrEmptyImage is returned when a source has no pixels to crop
var ErrEmptyImage = errors.New("cropper: image has zero width or height")

// AspectRatio represents common aspect ratios
type AspectRatio struct {
	Width  int
	Height int
	Name   string
}

// Common aspect ratios
var (
	Square     = AspectRatio{1, 1, "square"}
	Portrait   = AspectRatio{3, 4, "portrait"}
	Landscape  = AspectRatio{4, 3, "landscape"}
	Widescreen = AspectRatio{16, 9, "widescreen"}
	Instagram  = AspectRatio{4, 5, "instagram"}
	Story      = AspectRatio{9, 16, "story"}
)

// CommonAspectRatios returns a list of commonly used aspect ratios
func CommonAspectRatios() []AspectRatio {
	return []AspectRatio{Square, Portrait, Landscape, Widescreen, Instagram, Story}
}

// Float returns the ratio as width/height
func (r AspectRatio) Float() float64 {
	return float64(r.Width) / float64(r.Height)
}

func (r AspectRatio) String() string {
	return fmt.Sprintf("%d:%d", r.Width, r.Height)
}

// ParseAspectRatio accepts a preset name ("widescreen") or a "W:H" pair ("16:9")
func ParseAspectRatio(s string) (AspectRatio, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, r := range CommonAspectRatios() {
		if s == r.Name {
			return r, nil
		}
	}

	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return AspectRatio{}, fmt.Errorf("invalid aspect ratio %q: want name or W:H", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return AspectRatio{}, fmt.Errorf("invalid aspect ratio width %q: %w", parts[0], err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return AspectRatio{}, fmt.Errorf("invalid aspect ratio height %q: %w", parts[1], err)
	}
	if w <= 0 || h <= 0 {
		return AspectRatio{}, fmt.Errorf("invalid aspect ratio %q: both sides must be positive", s)
	}

	for _, r := range CommonAspectRatios() {
		if r.Width == w && r.Height == h {
			return r, nil
		}
	}
	return AspectRatio{Width: w, Height: h, Name: fmt.Sprintf("%dx%d", w, h)}, nil
}

// CenterCrop computes the largest window of the given ratio centered in a w×h source.
//
// The window starts at full width; when that would be taller than the source it is
// constrained by height instead. Integer arithmetic keeps results exact, so a
// 4000×3000 source yields 4000×2250 at offset (0, 375).
func CenterCrop(width, height int, ratio AspectRatio) (types.CropGeometry, error) {
	if width <= 0 || height <= 0 {
		return types.CropGeometry{}, fmt.Errorf("%w: %dx%d", ErrEmptyImage, width, height)
	}
	if ratio.Width <= 0 || ratio.Height <= 0 {
		return types.CropGeometry{}, fmt.Errorf("invalid aspect ratio %s", ratio)
	}

	newW := width
	newH := width * ratio.Height / ratio.Width
	if newH > height {
		newH = height
		newW = height * ratio.Width / ratio.Height
	}
	// Degenerate sources (e.g. 1×1000 at 16:9) still produce at least one pixel.
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	return types.CropGeometry{
		SourceWidth:  width,
		SourceHeight: height,
		Left:         (width - newW) / 2,
		Top:          (height - newH) / 2,
		Width:        newW,
		Height:       newH,
	}, nil
}

// Crop copies the geometry's window out of img at 1:1 scale into a new NRGBA buffer.
func Crop(img image.Image, g types.CropGeometry) *image.NRGBA {
	b := img.Bounds()
	rect := g.Rect().Add(b.Min)
	return imaging.Crop(img, rect)
}

// CropToRatio centers a crop of the given ratio on img
func CropToRatio(img image.Image, ratio AspectRatio) (*image.NRGBA, types.CropGeometry, error) {
	b := img.Bounds()
	g, err := CenterCrop(b.Dx(), b.Dy(), ratio)
	if err != nil {
		return nil, types.CropGeometry{}, err
	}
	return Crop(img, g), g, nil
}
