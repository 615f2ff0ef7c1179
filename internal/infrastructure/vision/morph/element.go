// Package morph реализует бинарную морфологию квадратным структурным элементом
// и сглаживание, используемые перед трассировкой контуров.
package morph

import "grain-analyzer/internal/domain/entity"

// StructuringElement квадратное ядро со стороной Size, все ячейки активны.
type StructuringElement struct {
	size int
}

// NewStructuringElement создаёт ядро; сторона должна быть положительной и нечётной.
func NewStructuringElement(size int) (StructuringElement, error) {
	if size < 1 || size%2 == 0 {
		return StructuringElement{}, entity.NewConfigurationError("kernel_size", "%d must be a positive odd size", size)
	}
	return StructuringElement{size: size}, nil
}

// ElementForRadius возвращает ядро (2r+1)x(2r+1).
func ElementForRadius(r int) (StructuringElement, error) {
	if r < 0 {
		return StructuringElement{}, entity.NewConfigurationError("expansion_radius", "%d must be non-negative", r)
	}
	return NewStructuringElement(2*r + 1)
}

// Size сторона ядра.
func (e StructuringElement) Size() int { return e.size }

// Radius половина стороны без центра.
func (e StructuringElement) Radius() int { return e.size / 2 }
