package telegram

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cast"

	"grain-analyzer/internal/container"
	"grain-analyzer/internal/domain/entity"
	"grain-analyzer/internal/logger"
)

const component = "bot"

const (
	msgStart = `👋 Привет! Я считаю зёрна на снимках шлифов.

📸 Выберите фазу и отправьте снимок или маску сегментации.

📋 Команды:
/ferrite: феррит, светлые зёрна
/perlite: перлит, тёмные участки
/help: справка`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Выберите фазу: /ferrite или /perlite
2️⃣ Отправьте снимок (фото или файлом PNG/TIFF без сжатия)
3️⃣ Вы получите таблицу зёрен и размеченное изображение

⚙️ Настройки:
/radius N: расширение границ феррита радиусом N, /radius off выключает
/tree: считать все контуры, включая дыры
/external: только внешние контуры
/cancel: отменить операцию`

	msgAwaitingPhoto   = "📸 Фаза: %s. Отправьте снимок шлифа."
	msgCancelled       = "❌ Операция отменена. Выберите фазу: /ferrite или /perlite."
	msgSendPhoto       = "📸 Пожалуйста, отправьте снимок шлифа."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgBusy            = "⏳ Предыдущий снимок ещё обрабатывается."
	msgNoGrains        = "✅ Зёрна не обнаружены."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте другой снимок."
	msgBadImage        = "⚠️ Файл не похож на изображение."
	msgRadiusUsage     = "ℹ️ Использование: /radius N (N >= 0) или /radius off."
	msgRadiusSet       = "✅ Радиус расширения: %d."
	msgRadiusOff       = "✅ Расширение границ выключено."
	msgRadiusFerrite   = "⚠️ Расширение границ доступно только для феррита."
	msgTraceMode       = "✅ Режим контуров: %s."
	msgGrainsCaption   = "Зёрен: %d, суммарная площадь %.1f"
)

// Bot представляет Telegram-бота
type Bot struct {
	api *tgbotapi.BotAPI
	app *container.Container
	log logger.Logger
}

// NewBot создаёт нового бота
func NewBot(token string, app *container.Container, log logger.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Info(component, "authorized", logger.Fields{"account": api.Self.UserName})

	return &Bot{
		api: api,
		app: app,
		log: log,
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if !handled(update.Message) {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// сообщения каналов и анонимных администраторов приходят без отправителя
	if msg.From == nil {
		return
	}

	user, err := b.app.UserService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.Error(component, err, logger.Fields{"user": msg.From.ID})
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Обработка снимка: фото или файл
	if fileID, ok := imageFileID(msg); ok {
		b.handleImage(ctx, msg, user, fileID)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	users := b.app.UserService
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		if _, err := users.Cancel(ctx, user.ID, chatID); err != nil {
			b.log.Error(component, err, nil)
		}
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "ferrite", "perlite":
		phase, _ := entity.ParsePhaseMode(msg.Command())
		if _, err := users.SelectPhase(ctx, user.ID, chatID, phase); err != nil {
			b.log.Error(component, err, nil)
			return
		}
		b.sendMessage(chatID, fmt.Sprintf(msgAwaitingPhoto, phase))

	case "radius":
		b.handleRadius(ctx, msg, user)

	case "tree", "external":
		mode, _ := entity.ParseTraceMode(msg.Command())
		if _, err := users.SetTraceMode(ctx, user.ID, chatID, mode); err != nil {
			b.log.Error(component, err, nil)
			return
		}
		b.sendMessage(chatID, fmt.Sprintf(msgTraceMode, mode))

	case "cancel":
		if _, err := users.Cancel(ctx, user.ID, chatID); err != nil {
			b.log.Error(component, err, nil)
		}
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleRadius разбирает аргумент /radius
func (b *Bot) handleRadius(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	arg := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	var radius *int
	if arg != "off" {
		n, err := cast.ToIntE(arg)
		if arg == "" || err != nil {
			b.sendMessage(chatID, msgRadiusUsage)
			return
		}
		radius = &n
	}

	_, err := b.app.UserService.SetExpansionRadius(ctx, user.ID, chatID, radius)
	switch {
	case err == nil && radius == nil:
		b.sendMessage(chatID, msgRadiusOff)
	case err == nil:
		b.sendMessage(chatID, fmt.Sprintf(msgRadiusSet, *radius))
	case entity.IsConfigurationError(err) && user.Phase != entity.PhaseFerrite:
		b.sendMessage(chatID, msgRadiusFerrite)
	case entity.IsConfigurationError(err):
		b.sendMessage(chatID, msgRadiusUsage)
	default:
		b.log.Error(component, err, nil)
	}
}

// handleImage анализирует снимок и отправляет таблицу и размеченное изображение
func (b *Bot) handleImage(ctx context.Context, msg *tgbotapi.Message, user *entity.User, fileID string) {
	if user.State == entity.StateProcessing {
		b.sendMessage(msg.Chat.ID, msgBusy)
		return
	}
	b.sendMessage(msg.Chat.ID, msgProcessing)

	imageData, err := b.downloadFile(fileID)
	if err != nil {
		b.log.Error(component, err, logger.Fields{"file_id": fileID})
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	out, err := b.app.AnalysisService.AnalyzeForUser(ctx, user.ID, msg.Chat.ID, imageData)
	if err != nil {
		b.log.Error(component, err, logger.Fields{"user": user.ID, "bytes": len(imageData)})
		if entity.IsInvalidInput(err) {
			b.sendMessage(msg.Chat.ID, msgBadImage)
		} else {
			b.sendMessage(msg.Chat.ID, msgProcessingError)
		}
		return
	}

	if !out.Result.HasGrains() {
		b.sendMessage(msg.Chat.ID, msgNoGrains)
		return
	}

	text := tgbotapi.NewMessage(msg.Chat.ID, "<pre>"+html.EscapeString(out.Report)+"</pre>")
	text.ParseMode = tgbotapi.ModeHTML
	if _, err := b.api.Send(text); err != nil {
		b.log.Error(component, err, logger.Fields{"run_id": out.RunID})
	}

	if len(out.Labeled) == 0 {
		return
	}
	photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "grains.png", Bytes: out.Labeled})
	photo.Caption = fmt.Sprintf(msgGrainsCaption, out.Result.Summary.Count, out.Result.Summary.TotalArea)
	if _, err := b.api.Send(photo); err != nil {
		b.log.Error(component, err, logger.Fields{"run_id": out.RunID})
	}
}

// handled сообщает, есть ли у обновления сообщение от пользователя.
func handled(msg *tgbotapi.Message) bool {
	return msg != nil && msg.From != nil
}

// imageFileID выбирает фото максимального разрешения или документ-изображение
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error(component, err, logger.Fields{"chat": chatID})
	}
}
