package photo

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/apex/log"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
)

const (
	maxPreviewDimension = 512
	previewQuality      = 85
)

// Orientation returns the EXIF orientation of data, 1 when absent.
func Orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// orient maps a source pixel to its upright position for EXIF orientations
// 2 through 8. Orientations 5 to 8 swap width and height.
func orient(img image.Image, orientation int) image.Image {
	if orientation <= 1 || orientation > 8 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dw, dh := w, h
	if orientation >= 5 {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch orientation {
			case 2:
				dx, dy = w-1-x, y
			case 3:
				dx, dy = w-1-x, h-1-y
			case 4:
				dx, dy = x, h-1-y
			case 5:
				dx, dy = y, x
			case 6:
				dx, dy = h-1-y, x
			case 7:
				dx, dy = h-1-y, w-1-x
			case 8:
				dx, dy = y, w-1-x
			}
			dst.Set(dx, dy, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

// Preview returns an upright JPEG thumbnail no larger than 512 px on either
// side. Small upright JPEGs are re-encoded unchanged in size.
func Preview(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo: %w", err)
	}
	o := Orientation(data)
	img = orient(img, o)

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	scale := 1.0
	if w > maxPreviewDimension || h > maxPreviewDimension {
		scale = float64(maxPreviewDimension) / float64(max(w, h))
	}
	nw, nh := max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: previewQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode preview: %w", err)
	}
	log.Debugf("Preview %dx%d -> %dx%d (orientation %d, %d bytes)", w, h, nw, nh, o, buf.Len())
	return buf.Bytes(), nil
}
