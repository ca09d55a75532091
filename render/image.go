package render

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"math"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/lvillar/formfill/layout"
)

// ErrImageData is returned by DecodeImage for values that are not an
// encoded raster image.
var ErrImageData = errors.New("render: invalid image data")

// MaxImagePixels bounds the pixel count of an image value. Larger images
// are rejected before their pixels are decoded.
const MaxImagePixels = 50_000_000

// DecodedImage is an image ready to embed in a PDF.
type DecodedImage struct {
	Data          []byte
	Format        string // PNG, JPG or GIF
	Width, Height int
}

// DecodeImage accepts a data URI ("data:image/png;base64,...") or bare
// base64. PNG, JPEG and GIF are embedded as is; WebP, BMP and TIFF are
// re-encoded as PNG.
func DecodeImage(value string) (DecodedImage, error) {
	s := strings.TrimSpace(value)
	if strings.HasPrefix(s, "data:") {
		i := strings.Index(s, ",")
		if i < 0 || !strings.Contains(s[:i], ";base64") {
			return DecodedImage{}, fmt.Errorf("%w: data URI is not base64", ErrImageData)
		}
		s = s[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if err != nil {
			return DecodedImage{}, fmt.Errorf("%w: %v", ErrImageData, err)
		}
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return DecodedImage{}, fmt.Errorf("%w: %v", ErrImageData, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width > MaxImagePixels/cfg.Height {
		return DecodedImage{}, fmt.Errorf("%w: %dx%d %s image", ErrImageData, cfg.Width, cfg.Height, format)
	}
	out := DecodedImage{Data: raw, Width: cfg.Width, Height: cfg.Height}
	switch format {
	case "png":
		out.Format = "PNG"
	case "jpeg":
		out.Format = "JPG"
	case "gif":
		out.Format = "GIF"
	default:
		img, _, err := image.Decode(bytes.NewReader(raw))
		if err != nil {
			return DecodedImage{}, fmt.Errorf("%w: %v", ErrImageData, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return DecodedImage{}, fmt.Errorf("render: re-encode %s: %w", format, err)
		}
		out.Data, out.Format = buf.Bytes(), "PNG"
	}
	return out, nil
}

// dispatchImage scales the image to fit inside the rect keeping its aspect
// ratio and centers it. Undecodable values draw nothing.
func dispatchImage(v ImageVariant, value any, pageH float64) []Op {
	s, ok := value.(string)
	if !ok || s == "" || v.Rect.W <= 0 || v.Rect.H <= 0 {
		return nil
	}
	img, err := DecodeImage(s)
	if err != nil || img.Width == 0 || img.Height == 0 {
		return nil
	}
	scale := math.Min(v.Rect.W/float64(img.Width), v.Rect.H/float64(img.Height))
	w, h := float64(img.Width)*scale, float64(img.Height)*scale
	return []Op{Image{
		Data:   img.Data,
		Format: img.Format,
		X:      v.Rect.X + (v.Rect.W-w)/2,
		Y:      layout.BaseY(pageH, v.Rect) + (v.Rect.H-h)/2,
		W:      w,
		H:      h,
	}}
}
