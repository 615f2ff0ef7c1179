package entity

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingPhoto UserState = "awaiting_photo" // Ожидание снимка или маски шлифа
	StateProcessing    UserState = "processing"     // Анализ изображения
)

// User представляет пользователя бота
type User struct {
	ID              int64     // Telegram User ID
	ChatID          int64     // Telegram Chat ID
	State           UserState // Текущее состояние пользователя
	Phase           PhaseMode // Выбранная фаза
	ExpansionRadius *int      // Радиус расширения для феррита, nil: выключено
	TraceMode       TraceMode // Режим выборки контуров
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
		Phase:  PhaseFerrite,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// SetPhase выбирает фазу; радиус расширения сбрасывается для перлита
func (u *User) SetPhase(phase PhaseMode) {
	u.Phase = phase
	if phase != PhaseFerrite {
		u.ExpansionRadius = nil
	}
}

// AnalysisConfig собирает параметры анализа поверх базовой конфигурации
func (u *User) AnalysisConfig(base AnalysisConfig) AnalysisConfig {
	cfg := base
	cfg.Phase = u.Phase
	cfg.ExpansionRadius = nil
	if u.Phase == PhaseFerrite && u.ExpansionRadius != nil {
		cfg = cfg.WithExpansion(*u.ExpansionRadius)
	}
	if u.TraceMode != TraceDefault {
		cfg.TraceMode = u.TraceMode
	}
	return cfg
}
