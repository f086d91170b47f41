package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// MinWatermarkWidth is the width at or below which images are left unmarked
	MinWatermarkWidth = 600
	// WatermarkX and WatermarkY place the icon's top left corner
	WatermarkX = 415
	WatermarkY = 145
)

// Watermark draws icon over img. Narrow images, or a missing icon, come back unchanged.
func Watermark(img, icon []byte) ([]byte, error) {
	if len(icon) == 0 {
		return img, nil
	}

	base, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if base.Bounds().Dx() <= MinWatermarkWidth {
		return img, nil
	}

	mark, _, err := image.Decode(bytes.NewReader(icon))
	if err != nil {
		return nil, fmt.Errorf("failed to decode watermark: %w", err)
	}

	canvas := image.NewRGBA(base.Bounds())
	draw.Draw(canvas, canvas.Bounds(), base, base.Bounds().Min, draw.Src)

	at := image.Pt(WatermarkX, WatermarkY).Add(canvas.Bounds().Min)
	target := image.Rectangle{Min: at, Max: at.Add(mark.Bounds().Size())}
	draw.Draw(canvas, target, mark, mark.Bounds().Min, draw.Over)

	return encode(canvas)
}

// Stack places top above bottom on a canvas as wide as the wider of the two
func Stack(top, bottom []byte) ([]byte, error) {
	a, _, err := image.Decode(bytes.NewReader(top))
	if err != nil {
		return nil, fmt.Errorf("failed to decode top image: %w", err)
	}
	b, _, err := image.Decode(bytes.NewReader(bottom))
	if err != nil {
		return nil, fmt.Errorf("failed to decode bottom image: %w", err)
	}

	width := max(a.Bounds().Dx(), b.Bounds().Dx())
	height := a.Bounds().Dy() + b.Bounds().Dy()
	canvas := image.NewRGBA(image.Rect(0, 0, width, height))

	draw.Draw(canvas, image.Rect(0, 0, a.Bounds().Dx(), a.Bounds().Dy()), a, a.Bounds().Min, draw.Src)
	draw.Draw(canvas, image.Rect(0, a.Bounds().Dy(), b.Bounds().Dx(), height), b, b.Bounds().Min, draw.Src)

	return encode(canvas)
}

// Extension returns the file extension matching data, with the dot
func Extension(data []byte) string {
	if ext := mimetype.Detect(data).Extension(); ext != "" {
		return ext
	}
	return ".png"
}

// ContentType returns the MIME type of data
func ContentType(data []byte) string {
	return mimetype.Detect(data).String()
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
