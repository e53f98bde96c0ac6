// Package watermark crops photos to a fixed aspect ratio and burns a caption band
// into the bottom edge.
//
// A Captioner is safe for concurrent use. The font is parsed once and shared;
// every call acquires its own face and pixel buffer and releases the face before
// returning.
package watermark

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/inecosys/utilitytool/pkg/cropper"
	"github.com/inecosys/utilitytool/pkg/processing"
	"github.com/inecosys/utilitytool/pkg/types"
)

var (
	// ErrInvalidImage is returned for undecodable sources and zero-sized rasters.
	ErrInvalidImage = errors.New("invalid image")
	// ErrRenderUnavailable is returned when no drawing surface or font face can be created.
	ErrRenderUnavailable = errors.New("render surface unavailable")
)

const (
	// DefaultRightText is the organization label drawn at the right of the band
	DefaultRightText = "Inecosys GmbH"
	// DefaultCenterText is the event label used when none is given
	DefaultCenterText = "DigiKolleg 2025 Final Presentation"

	DefaultFontSize  = 36
	DefaultPaddingX  = 16
	DefaultPaddingY  = 16
	DefaultLeftInset = 20
	// DefaultMaxPixels bounds the size of the output surface (~100 megapixels).
	DefaultMaxPixels = 100_000_000
)

// Options controls geometry, typography and encoding
type Options struct {
	AspectRatio cropper.AspectRatio
	FontSize    int
	PaddingX    int
	PaddingY    int
	LeftInset   int
	Background  color.Color
	Foreground  color.Color
	Format      string
	Quality     int
	MaxPixels   int
	// FontData holds a TrueType/OpenType font; nil selects Go Regular.
	FontData []byte
}

// DefaultOptions returns a 16:9 crop with a 68px white band and black 36px text
func DefaultOptions() Options {
	return Options{
		AspectRatio: cropper.Widescreen,
		FontSize:    DefaultFontSize,
		PaddingX:    DefaultPaddingX,
		PaddingY:    DefaultPaddingY,
		LeftInset:   DefaultLeftInset,
		Background:  color.White,
		Foreground:  color.Black,
		Format:      processing.FormatJPEG,
		Quality:     processing.DefaultQuality,
		MaxPixels:   DefaultMaxPixels,
	}
}

// Caption is the pair of strings drawn into the band
type Caption struct {
	Center string
	Right  string
}

// DefaultCaption pairs center with the organization label
func DefaultCaption(center string) Caption {
	return Caption{Center: center, Right: DefaultRightText}
}

// BandHeight returns the caption band height for the options
func (o Options) BandHeight() int {
	return o.FontSize + 2*o.PaddingY
}

var goRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

// Captioner normalizes and captions images
type Captioner struct {
	opts      Options
	font      *opentype.Font
	fontErr   error
	processor *processing.Processor
	logger    *zap.Logger
}

// New creates a Captioner with default options
func New() *Captioner {
	return NewWithOptions(DefaultOptions())
}

// NewWithOptions creates a Captioner with custom options. Unset sizes, colors,
// format and quality fall back to their defaults; paddings and inset only when
// negative, since zero is a valid spacing. A font that fails to parse surfaces
// as ErrRenderUnavailable on first use.
func NewWithOptions(opts Options) *Captioner {
	opts = withDefaults(opts)

	c := &Captioner{
		opts:      opts,
		processor: processing.NewProcessor(),
		logger:    zap.NewNop(),
	}
	if opts.FontData != nil {
		c.font, c.fontErr = opentype.Parse(opts.FontData)
	} else {
		c.font, c.fontErr = goRegular()
	}
	return c
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.AspectRatio.Width <= 0 || opts.AspectRatio.Height <= 0 {
		opts.AspectRatio = def.AspectRatio
	}
	if opts.FontSize <= 0 {
		opts.FontSize = def.FontSize
	}
	if opts.PaddingX < 0 {
		opts.PaddingX = def.PaddingX
	}
	if opts.PaddingY < 0 {
		opts.PaddingY = def.PaddingY
	}
	if opts.LeftInset < 0 {
		opts.LeftInset = def.LeftInset
	}
	if opts.Background == nil {
		opts.Background = def.Background
	}
	if opts.Foreground == nil {
		opts.Foreground = def.Foreground
	}
	if opts.Format == "" {
		opts.Format = def.Format
	}
	if opts.Quality <= 0 {
		opts.Quality = def.Quality
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = def.MaxPixels
	}
	return opts
}

// SetLogger attaches a logger for per-image debug output
func (c *Captioner) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c.logger = logger
}

// Options returns a copy of the effective options
func (c *Captioner) Options() Options {
	return c.opts
}

// NormalizeAndCaption decodes data, crops it, draws the caption band and returns
// the encoded result.
func (c *Captioner) NormalizeAndCaption(data []byte, caption Caption) ([]byte, error) {
	res, err := c.Process(data, caption)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// Process is NormalizeAndCaption with the geometry and layout of the result
func (c *Captioner) Process(data []byte, caption Caption) (types.CaptionedImage, error) {
	// The crop never exceeds the source, so the header alone decides the budget
	cfg, _, err := c.processor.DecodeConfig(data)
	if err != nil {
		return types.CaptionedImage{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return types.CaptionedImage{}, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImage, cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(c.opts.MaxPixels) {
		return types.CaptionedImage{}, fmt.Errorf("%w: source %dx%d exceeds %d pixels",
			ErrRenderUnavailable, cfg.Width, cfg.Height, c.opts.MaxPixels)
	}

	img, format, err := c.processor.Decode(data)
	if err != nil {
		return types.CaptionedImage{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	c.logger.Debug("decoded source",
		zap.String("format", format),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))
	return c.CaptionImage(img, caption)
}

// CaptionImage renders and encodes an already decoded image
func (c *Captioner) CaptionImage(img image.Image, caption Caption) (types.CaptionedImage, error) {
	canvas, geom, layout, err := c.Render(img, caption)
	if err != nil {
		return types.CaptionedImage{}, err
	}

	data, err := c.processor.Encode(canvas, c.opts.Format, c.opts.Quality)
	if err != nil {
		return types.CaptionedImage{}, fmt.Errorf("%w: %v", ErrRenderUnavailable, err)
	}

	format, _ := processing.NormalizeFormat(c.opts.Format)
	return types.CaptionedImage{
		Data:     data,
		Format:   format,
		Geometry: geom,
		Layout:   layout,
	}, nil
}

// Render crops img and draws the caption band without encoding
func (c *Captioner) Render(img image.Image, caption Caption) (*image.NRGBA, types.CropGeometry, types.CaptionLayout, error) {
	if img == nil {
		return nil, types.CropGeometry{}, types.CaptionLayout{}, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, types.CropGeometry{}, types.CaptionLayout{}, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImage, b.Dx(), b.Dy())
	}

	geom, err := cropper.CenterCrop(b.Dx(), b.Dy(), c.opts.AspectRatio)
	if err != nil {
		return nil, types.CropGeometry{}, types.CaptionLayout{}, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if int64(geom.Width)*int64(geom.Height) > int64(c.opts.MaxPixels) {
		return nil, geom, types.CaptionLayout{}, fmt.Errorf("%w: %dx%d exceeds %d pixels",
			ErrRenderUnavailable, geom.Width, geom.Height, c.opts.MaxPixels)
	}

	face, err := c.newFace()
	if err != nil {
		return nil, geom, types.CaptionLayout{}, err
	}
	defer face.Close()

	canvas := cropper.Crop(img, geom)
	layout := c.drawCaption(canvas, face, caption)

	c.logger.Debug("rendered caption",
		zap.Int("left", geom.Left),
		zap.Int("top", geom.Top),
		zap.Int("width", geom.Width),
		zap.Int("height", geom.Height),
		zap.Int("right_width", layout.RightWidth))

	return canvas, geom, layout, nil
}

func (c *Captioner) newFace() (font.Face, error) {
	if c.fontErr != nil {
		return nil, fmt.Errorf("%w: parse font: %v", ErrRenderUnavailable, c.fontErr)
	}
	face, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    float64(c.opts.FontSize),
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create face: %v", ErrRenderUnavailable, err)
	}
	return face, nil
}

func (c *Captioner) drawCaption(canvas *image.NRGBA, face font.Face, caption Caption) types.CaptionLayout {
	w, h := canvas.Bounds().Dx(), canvas.Bounds().Dy()
	bandTop := h - c.opts.BandHeight()

	band := image.Rect(0, bandTop, w, h).Intersect(canvas.Bounds())
	draw.Draw(canvas, band, image.NewUniform(c.opts.Background), image.Point{}, draw.Src)

	// Texts are positioned by the top of their line box; the drawer wants a baseline.
	textTop := bandTop + c.opts.PaddingY
	baseline := fixed.I(textTop) + face.Metrics().Ascent

	fg := image.NewUniform(c.opts.Foreground)
	layout := types.CaptionLayout{
		Band:       band,
		CenterText: image.Pt(c.opts.LeftInset, textTop),
	}

	if caption.Center != "" {
		d := &font.Drawer{Dst: canvas, Src: fg, Face: face, Dot: fixed.Point26_6{X: fixed.I(c.opts.LeftInset), Y: baseline}}
		d.DrawString(caption.Center)
	}

	layout.RightWidth = measure(face, caption.Right)
	rightX := w - layout.RightWidth - c.opts.PaddingX
	layout.RightText = image.Pt(rightX, textTop)

	if caption.Right != "" {
		d := &font.Drawer{Dst: canvas, Src: fg, Face: face, Dot: fixed.Point26_6{X: fixed.I(rightX), Y: baseline}}
		d.DrawString(caption.Right)
	}

	return layout
}

// measure returns the pixel width of s, covering both advance and ink so the
// drawn glyphs never pass the measured extent.
func measure(face font.Face, s string) int {
	if s == "" {
		return 0
	}
	bounds, advance := font.BoundString(face, s)
	width := advance.Ceil()
	if ink := bounds.Max.X.Ceil(); ink > width {
		width = ink
	}
	return width
}
