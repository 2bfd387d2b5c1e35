// Package screenshot crops per-section images out of a captured page
// screenshot.
package screenshot

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/tsawler/pagecarve/chunk"
	"github.com/tsawler/pagecarve/model"
)

// maxCropHeight bounds the pixel height of a section crop. Taller crops are
// downscaled to this height, preserving aspect ratio.
const maxCropHeight = 4096

// Decode decodes a captured screenshot: base64-encoded PNG, with or without
// a data URI prefix.
func Decode(data string) (image.Image, error) {
	if strings.HasPrefix(data, "data:") {
		if i := strings.IndexByte(data, ','); i >= 0 {
			data = data[i+1:]
		}
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decoding screenshot base64: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding screenshot PNG: %w", err)
	}
	return img, nil
}

// Cropper cuts section rects out of a page screenshot. Section rects are in
// CSS pixels while the screenshot may be captured at a higher density, so
// coordinates are scaled by the ratio of screenshot width to page width.
type Cropper struct {
	img   image.Image
	scale float64
}

// NewCropper creates a cropper for the given screenshot and page width.
func NewCropper(img image.Image, pageWidth float64) *Cropper {
	scale := 1.0
	if pageWidth > 0 {
		scale = float64(img.Bounds().Dx()) / pageWidth
	}
	return &Cropper{img: img, scale: scale}
}

// Scale returns the device pixel ratio applied to section coordinates.
func (c *Cropper) Scale() float64 {
	return c.scale
}

// CropSection returns the screenshot region covered by a section rect,
// downscaled when taller than maxCropHeight. Returns an error when the
// scaled rect falls outside the screenshot.
func (c *Cropper) CropSection(rect model.Rect) (image.Image, error) {
	bounds := c.img.Bounds()
	region := image.Rect(
		bounds.Min.X+round(rect.Left()*c.scale),
		bounds.Min.Y+round(rect.Top()*c.scale),
		bounds.Min.X+round(rect.Right()*c.scale),
		bounds.Min.Y+round(rect.Bottom()*c.scale),
	).Intersect(bounds)
	if region.Empty() {
		return nil, fmt.Errorf("section rect %v is outside the screenshot", rect)
	}

	crop := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	draw.Draw(crop, crop.Bounds(), c.img, region.Min, draw.Src)

	if crop.Bounds().Dy() <= maxCropHeight {
		return crop, nil
	}

	factor := float64(maxCropHeight) / float64(crop.Bounds().Dy())
	scaled := image.NewRGBA(image.Rect(0, 0, round(float64(crop.Bounds().Dx())*factor), maxCropHeight))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), crop, crop.Bounds(), draw.Src, nil)
	return scaled, nil
}

// EncodePNG serializes an image to PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveSections writes one PNG per section into dir, named after the section
// ("section_3.png"), and returns the paths written. Sections whose rect
// falls outside the screenshot are skipped.
func (c *Cropper) SaveSections(chunks []chunk.Chunk, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var written []string
	for _, section := range chunks {
		crop, err := c.CropSection(section.Rect)
		if err != nil {
			continue
		}

		data, err := EncodePNG(crop)
		if err != nil {
			return written, fmt.Errorf("encoding %s: %w", section.Name, err)
		}

		path := filepath.Join(dir, section.Name+".png")
		if err := os.WriteFile(path, data, 0644); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func round(v float64) int {
	return int(math.Round(v))
}
