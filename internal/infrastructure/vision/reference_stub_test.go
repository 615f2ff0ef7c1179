//go:build !gocv
// +build !gocv

package vision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/infrastructure/vision/raster"
)

func TestReferenceContours_RequiresGoCV(t *testing.T) {
	_, err := ReferenceContours(raster.NewMask(4, 4), entity.TraceExternal)
	require.ErrorIs(t, err, ErrReferenceUnavailable)
	require.Zero(t, ReferenceArea(entity.Contour{}))
}
