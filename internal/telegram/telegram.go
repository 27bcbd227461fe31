package telegram

import (
	"WooWithMoysklad/internal/config"
	"WooWithMoysklad/pkg/logging"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pkg/errors"
)

var botGlobal *tgbotapi.BotAPI

// OnSyncCommand дергается по команде /sync, назначается в main
// чтобы не завязывать пакет telegram на пакет sync
var OnSyncCommand func() string

// BotStart запускает бота и слушает команды /start и /status
func BotStart() {

	logger := logging.GetLogger()
	logger.Info("BotStart:>Start")
	defer logger.Info("BotStart:>End")
	cfg := config.GetConfig()

	if cfg.TELEGRAM.BotToken == "" {
		logger.Info("TELEGRAM.BotToken не указан, бот не запущен")
		return
	}

	bot, err := tgbotapi.NewBotAPI(cfg.TELEGRAM.BotToken)
	if err != nil {
		logger.Errorf("failed tgbotapi.NewBotAPI(), error: %v", err)
		return
	}
	bot.Debug = cfg.TELEGRAM.Debug == 1
	botGlobal = bot

	logger.Infof("Authorized on account %s", bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates, err := bot.GetUpdatesChan(u)
	if err != nil {
		logger.Errorf("failed bot.GetUpdatesChan(), error: %v", err)
		return
	}

	for update := range updates {
		if update.Message == nil {
			continue
		}

		logger.Debugf("[%s] %s", update.Message.From.UserName, update.Message.Text)

		switch update.Message.Command() {
		case "start":
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Синхронизация Woo<->МойСклад запущена")
			if _, err := bot.Send(msg); err != nil {
				logger.Errorf("failed bot.Send(), error: %v", err)
			}
		case "status":
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, "Сервис работает")
			if _, err := bot.Send(msg); err != nil {
				logger.Errorf("failed bot.Send(), error: %v", err)
			}
		case "sync":
			text := "команда /sync не настроена"
			if OnSyncCommand != nil {
				text = OnSyncCommand()
			}
			msg := tgbotapi.NewMessage(update.Message.Chat.ID, text)
			if _, err := bot.Send(msg); err != nil {
				logger.Errorf("failed bot.Send(), error: %v", err)
			}
		}
	}
}

func SendMessage(text string) error {

	logger := logging.GetLogger()
	logger.Debug("Start SendMessage")
	defer logger.Debug("End SendMessage")
	cfg := config.GetConfig()

	if botGlobal == nil {
		return errors.New("телеграм бот не запущен")
	}
	if cfg.TELEGRAM.ChatID == 0 {
		return errors.New("не указан TELEGRAM.ChatID")
	}

	msg := tgbotapi.NewMessage(cfg.TELEGRAM.ChatID, text)
	_, err := botGlobal.Send(msg)
	if err != nil {
		return errors.Wrap(err, "failed bot.Send()")
	}
	return nil
}

// SendMessageToTelegramWithLogError шлет сообщение, ошибку только логирует
func SendMessageToTelegramWithLogError(text string) {
	logger := logging.GetLogger()
	err := SendMessage(text)
	if err != nil {
		logger.Errorf("failed telegram.SendMessage(), error: %v", err)
	}
}
