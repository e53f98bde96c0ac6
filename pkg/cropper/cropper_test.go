package cropper

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestImage creates an image whose pixels encode their own coordinates
func createTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x % 256), uint8(y % 256), uint8((x + y) % 256), 255})
		}
	}
	return img
}

func TestCommonAspectRatios(t *testing.T) {
	ratios := CommonAspectRatios()
	require.NotEmpty(t, ratios)

	found := false
	for _, r := range ratios {
		if r.Name == "widescreen" && r.Width == 16 && r.Height == 9 {
			found = true
		}
	}
	assert.True(t, found, "expected widescreen 16:9 preset")
}

func TestParseAspectRatio(t *testing.T) {
	tests := []struct {
		in      string
		want    AspectRatio
		wantErr bool
	}{
		{"16:9", Widescreen, false},
		{"widescreen", Widescreen, false},
		{" Square ", Square, false},
		{"21:9", AspectRatio{21, 9, "21x9"}, false},
		{"16x9", AspectRatio{}, true},
		{"0:9", AspectRatio{}, true},
		{"a:b", AspectRatio{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAspectRatio(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCenterCropScenarios(t *testing.T) {
	tests := []struct {
		name                     string
		w, h                     int
		left, top, width, height int
	}{
		{"landscape 4:3", 4000, 3000, 0, 375, 4000, 2250},
		{"portrait", 1000, 2000, 0, 719, 1000, 562},
		{"exact 16:9", 1920, 1080, 0, 0, 1920, 1080},
		{"ultra wide", 3000, 1000, 611, 0, 1777, 1000},
		{"square", 900, 900, 0, 197, 900, 506},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := CenterCrop(tt.w, tt.h, Widescreen)
			require.NoError(t, err)
			assert.Equal(t, tt.left, g.Left)
			assert.Equal(t, tt.top, g.Top)
			assert.Equal(t, tt.width, g.Width)
			assert.Equal(t, tt.height, g.Height)
		})
	}
}

func TestCenterCropProperties(t *testing.T) {
	for w := 1; w <= 400; w += 13 {
		for h := 1; h <= 400; h += 17 {
			g, err := CenterCrop(w, h, Widescreen)
			require.NoError(t, err)

			assert.LessOrEqual(t, g.Left+g.Width, w, "%dx%d", w, h)
			assert.LessOrEqual(t, g.Top+g.Height, h, "%dx%d", w, h)

			// Symmetric margins within one pixel.
			assert.InDelta(t, g.Left, w-g.Width-g.Left, 1, "%dx%d", w, h)
			assert.InDelta(t, g.Top, h-g.Height-g.Top, 1, "%dx%d", w, h)

			if w*9 < h*16 && g.Height > 1 {
				// Too tall: full width kept.
				assert.Equal(t, w, g.Width, "%dx%d", w, h)
				assert.Equal(t, w*9/16, g.Height, "%dx%d", w, h)
			}
			if w*9 > h*16 && h*16/9 >= 1 {
				// Too wide: height is never larger than the source.
				assert.Equal(t, h, g.Height, "%dx%d", w, h)
			}

			// 16:9 within a pixel of rounding in either dimension.
			if g.Width >= 16 && g.Height >= 9 {
				assert.InDelta(t, float64(g.Width)*9/16, float64(g.Height), 1, "%dx%d", w, h)
			}
		}
	}
}

func TestCenterCropInvalid(t *testing.T) {
	_, err := CenterCrop(0, 0, Widescreen)
	assert.True(t, errors.Is(err, ErrEmptyImage))

	_, err = CenterCrop(100, 0, Widescreen)
	assert.ErrorIs(t, err, ErrEmptyImage)

	_, err = CenterCrop(100, 100, AspectRatio{0, 9, "broken"})
	assert.Error(t, err)
}

func TestCropCopiesPixels(t *testing.T) {
	img := createTestImage(320, 240)

	cropped, g, err := CropToRatio(img, Widescreen)
	require.NoError(t, err)

	assert.Equal(t, 320, cropped.Bounds().Dx())
	assert.Equal(t, 180, cropped.Bounds().Dy())
	assert.Equal(t, 30, g.Top)

	for _, p := range []image.Point{{0, 0}, {10, 20}, {319, 179}} {
		want := color.NRGBAModel.Convert(img.At(p.X+g.Left, p.Y+g.Top))
		assert.Equal(t, want, cropped.At(p.X, p.Y), "pixel %v", p)
	}
}

func TestCropHonorsNonZeroBounds(t *testing.T) {
	base := createTestImage(400, 300).(*image.RGBA)
	sub := base.SubImage(image.Rect(50, 50, 370, 290))

	cropped, g, err := CropToRatio(sub, Widescreen)
	require.NoError(t, err)
	assert.Equal(t, 320, g.Width)
	assert.Equal(t, 180, g.Height)

	want := color.NRGBAModel.Convert(base.At(50+g.Left, 50+g.Top))
	assert.Equal(t, want, cropped.At(0, 0))
}

func BenchmarkCropToRatio(b *testing.B) {
	img := createTestImage(1920, 1440)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CropToRatio(img, Widescreen)
	}
}
