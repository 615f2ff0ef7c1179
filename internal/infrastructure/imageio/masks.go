package imageio

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/disintegration/imaging"

	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/domain/port"
	"grain-analyzer/internal/infrastructure/vision/raster"
)

// DirMaskSource читает маски образца из каталога Root/<sample>.
// Каждый файл бинаризуется по Threshold, маски объединяются логическим ИЛИ.
type DirMaskSource struct {
	Root      string
	Threshold uint8
}

func NewDirMaskSource(root string, threshold uint8) *DirMaskSource {
	return &DirMaskSource{Root: root, Threshold: threshold}
}

// LoadSample возвращает объединённую маску образца как растр 0/255.
func (s *DirMaskSource) LoadSample(ctx context.Context, sample string) (*image.Gray, error) {
	files, err := s.Files(sample)
	if err != nil {
		return nil, err
	}
	m, err := MergeMasks(ctx, files, s.Threshold)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", sample, err)
	}
	return m.ToGray(), nil
}

// Files перечисляет файлы изображений образца в лексикографическом порядке.
func (s *DirMaskSource) Files(sample string) ([]string, error) {
	if sample == "" || sample != filepath.Base(sample) || sample == "." || sample == ".." {
		return nil, entity.NewInvalidInput("bad sample name %q", sample)
	}
	dir := filepath.Join(s.Root, sample)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read sample dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := imaging.FormatFromFilename(e.Name()); err != nil {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, entity.NewInvalidInput("sample %s has no mask images", sample)
	}
	sort.Strings(files)
	return files, nil
}

// MergeMasks бинаризует каждый файл и объединяет маски логическим ИЛИ.
// Все маски должны быть одного размера.
func MergeMasks(ctx context.Context, paths []string, threshold uint8) (*raster.Mask, error) {
	masks := make([]*raster.Mask, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := imaging.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open mask %s: %w", filepath.Base(p), err)
		}
		m, err := raster.Binarize(ToGray(img), threshold)
		if err != nil {
			return nil, fmt.Errorf("mask %s: %w", filepath.Base(p), err)
		}
		masks = append(masks, m)
	}
	return raster.Union(masks...)
}

// LoadMask читает один файл маски.
func LoadMask(path string, threshold uint8) (*raster.Mask, error) {
	return MergeMasks(context.Background(), []string{path}, threshold)
}

// Проверка реализации интерфейса
var _ port.MaskSource = (*DirMaskSource)(nil)
