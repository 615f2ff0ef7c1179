package morph

import "grain-analyzer/internal/infrastructure/vision/raster"

// Expand расширяет ферритные зёрна: инверсия, дилатация, эрозия, обратная инверсия.
// Радиус r даёт ядро (2r+1)x(2r+1). Вход не изменяется.
func Expand(m *raster.Mask, radius int) (*raster.Mask, error) {
	e, err := ElementForRadius(radius)
	if err != nil {
		return nil, err
	}
	inv := m.Invert()
	closed := Erode(Dilate(inv, e), e)
	return closed.Invert(), nil
}

// Denoise подавляет шум перлита: инверсия, гауссово сглаживание окном kernel,
// повторная бинаризация по более строгому порогу cutoff.
func Denoise(m *raster.Mask, kernel int, cutoff uint8) (*raster.Mask, error) {
	blurred, err := GaussianBlur(m.Invert().ToGray(), kernel)
	if err != nil {
		return nil, err
	}
	return raster.Binarize(blurred, cutoff)
}
