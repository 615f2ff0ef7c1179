package port

import (
	"context"
	"image"
)

// MaskSource источник масок сегментации образца
type MaskSource interface {
	// LoadSample объединяет все маски образца и возвращает их как растр 0/255
	LoadSample(ctx context.Context, sample string) (*image.Gray, error)
}
