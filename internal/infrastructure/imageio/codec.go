// Package imageio читает снимки и маски шлифов и кодирует размеченные изображения.
package imageio

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"

	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/domain/port"
)

// Codec декодирует PNG, JPEG, TIFF, BMP и GIF с учётом EXIF-ориентации.
type Codec struct{}

func NewCodec() *Codec {
	return &Codec{}
}

// DecodeGray декодирует изображение и переводит его в оттенки серого.
func (c *Codec) DecodeGray(data []byte) (*image.Gray, error) {
	if len(data) == 0 {
		return nil, entity.NewInvalidInput("empty image data")
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, entity.NewInvalidInput("decode image: %v", err)
	}
	return ToGray(img), nil
}

// EncodePNG кодирует изображение в PNG.
func (c *Codec) EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToGray приводит изображение к *image.Gray с началом координат в (0,0).
// Цветные пиксели переводятся по формуле яркости ITU-R 601-2: 0.299R + 0.587G + 0.114B.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))

	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			row := g.Pix[(y+b.Min.Y-g.Rect.Min.Y)*g.Stride+(b.Min.X-g.Rect.Min.X):]
			copy(out.Pix[y*out.Stride:(y+1)*out.Stride], row[:b.Dx()])
		}
		return out
	}

	luma := imaging.Grayscale(img)
	for i := range out.Pix {
		out.Pix[i] = luma.Pix[i*4]
	}
	return out
}

// Проверка реализации интерфейса
var _ port.ImageCodec = (*Codec)(nil)
