package port

import "image"

// ImageCodec декодирует снимки и кодирует результат
type ImageCodec interface {
	// DecodeGray декодирует изображение и приводит его к оттенкам серого
	DecodeGray(data []byte) (*image.Gray, error)

	// EncodePNG кодирует изображение в PNG
	EncodePNG(img image.Image) ([]byte, error)
}
