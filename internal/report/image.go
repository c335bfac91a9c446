package report

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// MaxImagePixels bounds width*height before a scan is decoded. Compressed formats can
// describe far more pixels than their byte size suggests.
const MaxImagePixels = 8000 * 8000

// preparedImage is image data in a form the PDF backend embeds directly.
type preparedImage struct {
	data []byte
	// typ is the backend image type: "JPG" or "PNG".
	typ string
}

// prepareImage decodes the scan fully so corrupt uploads are caught before layout.
// JPEGs pass through untouched; everything else is flattened onto white and re-encoded
// as an opaque 8-bit PNG, which the backend accepts without alpha or bit-depth caveats.
func prepareImage(img *Image) (preparedImage, error) {
	if img == nil || len(img.Data) == 0 {
		return preparedImage{}, fmt.Errorf("%w: empty image", ErrRenderingFailure)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(img.Data))
	if err != nil {
		return preparedImage{}, fmt.Errorf("%w: decode image %q: %v", ErrRenderingFailure, img.Name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return preparedImage{}, fmt.Errorf("%w: image %q has no pixels", ErrRenderingFailure, img.Name)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return preparedImage{}, fmt.Errorf("%w: image %q is %dx%d, over the %d pixel limit",
			ErrRenderingFailure, img.Name, cfg.Width, cfg.Height, MaxImagePixels)
	}

	m, format, err := image.Decode(bytes.NewReader(img.Data))
	if err != nil {
		return preparedImage{}, fmt.Errorf("%w: decode image %q: %v", ErrRenderingFailure, img.Name, err)
	}
	if format == "jpeg" {
		return preparedImage{data: img.Data, typ: "JPG"}, nil
	}

	b := m.Bounds()
	if b.Empty() {
		return preparedImage{}, fmt.Errorf("%w: image %q has no pixels", ErrRenderingFailure, img.Name)
	}
	flat := image.NewRGBA(b)
	draw.Draw(flat, b, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(flat, b, m, b.Min, draw.Over)

	var buf bytes.Buffer
	if err := png.Encode(&buf, flat); err != nil {
		return preparedImage{}, fmt.Errorf("%w: re-encode %s image: %v", ErrRenderingFailure, format, err)
	}
	return preparedImage{data: buf.Bytes(), typ: "PNG"}, nil
}
