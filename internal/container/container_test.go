package container

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	app "grain-analyzer/internal/application"
	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/infrastructure/imageio"
	"grain-analyzer/internal/infrastructure/report"
	"grain-analyzer/internal/infrastructure/storage"
	"grain-analyzer/internal/infrastructure/vision"
)

func TestNew_WiresServices(t *testing.T) {
	c := New(
		storage.NewMemoryUserRepository(),
		vision.NewEngine(nil),
		imageio.NewCodec(),
		report.NewTableFormatter(0),
		imageio.NewDirMaskSource(t.TempDir(), 128),
		app.Options{},
	)
	require.NotNil(t, c.UserService)
	require.NotNil(t, c.AnalysisService)
	require.Equal(t, entity.PhaseFerrite, c.AnalysisService.Defaults().Phase)

	user, err := c.UserService.SelectPhase(context.Background(), 1, 1, entity.PhasePerlite)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, user.State)
}
