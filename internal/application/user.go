package app

import (
	"context"

	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/domain/port"
)

type UserService struct {
	repo port.UserRepository
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

func (s *UserService) SetState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) error {
		u.SetState(state)
		return nil
	})
}

// SelectPhase выбирает фазу и переводит пользователя в ожидание снимка.
func (s *UserService) SelectPhase(ctx context.Context, userID, chatID int64, phase entity.PhaseMode) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) error {
		if phase != entity.PhaseFerrite && phase != entity.PhasePerlite {
			return entity.NewConfigurationError("phase", "unknown phase %q", phase)
		}
		u.SetPhase(phase)
		u.SetState(entity.StateAwaitingPhoto)
		return nil
	})
}

// SetExpansionRadius включает расширение границ феррита; nil выключает его.
func (s *UserService) SetExpansionRadius(ctx context.Context, userID, chatID int64, radius *int) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) error {
		if radius == nil {
			u.ExpansionRadius = nil
			return nil
		}
		if u.Phase != entity.PhaseFerrite {
			return entity.NewConfigurationError("expansion_radius", "is supported for ferrite only")
		}
		if *radius < 0 {
			return entity.NewConfigurationError("expansion_radius", "%d must be non-negative", *radius)
		}
		r := *radius
		u.ExpansionRadius = &r
		return nil
	})
}

// SetTraceMode задаёт режим выборки контуров.
func (s *UserService) SetTraceMode(ctx context.Context, userID, chatID int64, mode entity.TraceMode) (*entity.User, error) {
	return s.update(ctx, userID, chatID, func(u *entity.User) error {
		u.TraceMode = mode
		return nil
	})
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.SetState(ctx, userID, chatID, entity.StateMainMenu)
}

func (s *UserService) update(ctx context.Context, userID, chatID int64, apply func(*entity.User) error) (*entity.User, error) {
	user, err := s.repo.Get(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}

	if err := apply(user); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}
