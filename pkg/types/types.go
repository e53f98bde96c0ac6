package types

import "image"

// CropGeometry describes a centered crop window inside a source raster
type CropGeometry struct {
	SourceWidth  int `json:"source_width"`
	SourceHeight int `json:"source_height"`
	Left         int `json:"left"`
	Top          int `json:"top"`
	Width        int `json:"width"`
	Height       int `json:"height"`
}

// Rect returns the crop window in source coordinates
func (g CropGeometry) Rect() image.Rectangle {
	return image.Rect(g.Left, g.Top, g.Left+g.Width, g.Top+g.Height)
}

// CaptionLayout records where the caption band and both texts were placed
type CaptionLayout struct {
	Band       image.Rectangle `json:"band"`
	CenterText image.Point     `json:"center_text"`
	RightText  image.Point     `json:"right_text"`
	RightWidth int             `json:"right_width"`
}

// CaptionedImage is the result of one normalize-and-caption call
type CaptionedImage struct {
	Data     []byte        `json:"-"`
	Format   string        `json:"format"`
	Geometry CropGeometry  `json:"geometry"`
	Layout   CaptionLayout `json:"layout"`
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio"`
	Area        int     `json:"area"`
	Format      string  `json:"format,omitempty"`
}
