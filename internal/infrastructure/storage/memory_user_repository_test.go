package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"grain-analyzer/internal/domain/entity"
)

func TestMemoryUserRepository_GetCreatesUser(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, int64(10), user.ChatID)
	require.Equal(t, entity.StateMainMenu, user.State)
	require.Equal(t, entity.PhaseFerrite, user.Phase)

	again, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Same(t, user, again)
}

func TestMemoryUserRepository_SaveAndUpdateState(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user := entity.NewUser(2, 20)
	user.SetPhase(entity.PhasePerlite)
	require.NoError(t, repo.Save(ctx, user))

	require.NoError(t, repo.UpdateState(ctx, 2, entity.StateAwaitingPhoto))
	got, err := repo.Get(ctx, 2, 20)
	require.NoError(t, err)
	require.Equal(t, entity.PhasePerlite, got.Phase)
	require.Equal(t, entity.StateAwaitingPhoto, got.State)

	// неизвестный пользователь не создаётся
	require.NoError(t, repo.UpdateState(ctx, 3, entity.StateProcessing))
	_, exists := repo.users[3]
	require.False(t, exists)
}

func TestMemoryUserRepository_ConcurrentGet(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := repo.Get(ctx, id%4, id); err != nil {
				t.Error(err)
			}
		}(int64(i))
	}
	wg.Wait()
	require.Len(t, repo.users, 4)
}
