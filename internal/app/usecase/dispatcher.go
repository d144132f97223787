package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Тексты ответов бота
const (
	msgConnectUsage = "Please provide your API key. Example: /connect YOUR_API_KEY \n\nFor API ID /help"
	msgConnected    = "✅ API key connected successfully! You can now shorten links."
	msgInvalidKey   = "❌ Invalid API key. Please try again.\n\nHow to connect /help"
	msgKeyCheckFail = "⚠️ Could not reach the shortening service to verify your key. Please try again later."

	msgDisconnected = "✅ Your API key has been disconnected successfully."
	msgNotConnected = "⚠️ You have not connected an API key yet."

	msgViewNone = "⚠️ No API key is connected. Use /connect to link one."

	msgConnectFirst = "⚠️ You haven't connected your API key yet. Please use /connect [API_KEY] to connect."
	msgNoLinks      = "Please send a valid link to shorten."
	msgShortenFail  = "❌ Failed to shorten the link."
	msgShortenError = "❌ An error occurred while processing your link. Please try again."

	msgHelp = `How to Connect:
1. Go to [Bisgram.com](https://bisgram.com)
2. Create an Account
3. Click on the menu bar (top left side)
4. Click on *Tools > Developer API*
5. Copy the API token
6. Use this command: /connect YOUR_API_KEY
   Example: /connect 8268d7f25na2c690bk25d4k20fbc63p5p09d6906

For any confusion or help, contact [@ayushx2026_bot](https://t.me/ayushx2026_bot)`

	msgCommands = `🤖 *Link Shortener Bot Commands:*
- /connect [API_KEY] - Connect your API key.
- /disconnect - Disconnect your API key.
- /view - View your connected API key.
- /stats - View your link shortening stats.
- /help - How to connect to website.`
)

// MsgInternalError отправляется транспортом, когда команда завершилась
// ошибкой хранилища и подтверждение отправлять нельзя
const MsgInternalError = "⚠️ Something went wrong. Please try again later."

// intentKind вид распознанной команды
type intentKind int

const (
	intentStart intentKind = iota
	intentConnect
	intentDisconnect
	intentView
	intentStats
	intentHelp
	intentCommands
	intentMessage
)

// intent результат классификации входящего текста
type intent struct {
	kind intentKind
	args []string
}

// classify тотальна: любой текст дает ровно один intent, некорректный
// ввод выражается значением, а не ошибкой. Команды распознаются по точному
// совпадению первого токена, все остальное считается обычным сообщением.
func classify(text string) intent {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return intent{kind: intentMessage}
	}

	switch fields[0] {
	case "/start":
		return intent{kind: intentStart}
	case "/connect":
		return intent{kind: intentConnect, args: fields[1:]}
	case "/disconnect":
		return intent{kind: intentDisconnect}
	case "/view":
		return intent{kind: intentView}
	case "/stats":
		return intent{kind: intentStats}
	case "/help":
		return intent{kind: intentHelp}
	case "/commands":
		return intent{kind: intentCommands}
	default:
		return intent{kind: intentMessage}
	}
}

// extractLinks выделяет из текста токены, похожие на ссылки
func extractLinks(text string) []string {
	var links []string
	for _, word := range strings.Fields(text) {
		if strings.HasPrefix(word, "http") {
			links = append(links, word)
		}
	}
	return links
}

// Dispatcher превращает входящее сообщение в ответы, оркестрируя хранилище
// связок и клиент сервиса сокращения
type Dispatcher struct {
	storage   BindingStorage
	shortener ShortenerAPI
	log       *zerolog.Logger
}

func NewDispatcher(storage BindingStorage, shortener ShortenerAPI, log *zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		storage:   storage,
		shortener: shortener,
		log:       log,
	}
}

// Handle обрабатывает одно входящее сообщение до конца. Ошибка возвращается
// только при сбое хранилища: в этом случае ответы не отправляются, а транспорт
// логирует ошибку и сообщает пользователю об общем сбое.
func (d *Dispatcher) Handle(ctx context.Context, msg InboundMessage) ([]Reply, error) {
	in := classify(msg.Text)

	switch in.kind {
	case intentStart:
		return d.textReply(msg, fmt.Sprintf("Hi %s,\n\nWelcome to the Terabis \n\nHow to connect /help", msg.FirstName)), nil
	case intentConnect:
		return d.handleConnect(ctx, msg, in.args)
	case intentDisconnect:
		return d.handleDisconnect(ctx, msg)
	case intentView:
		return d.handleView(ctx, msg)
	case intentStats:
		return d.handleStats(ctx, msg)
	case intentHelp:
		return d.markdownReply(msg, msgHelp), nil
	case intentCommands:
		return d.markdownReply(msg, msgCommands), nil
	default:
		return d.handleMessage(ctx, msg)
	}
}

// handleConnect проверяет ключ удаленным сервисом и сохраняет связку.
// Существующая связка перезаписывается только после успешной проверки
// нового ключа.
func (d *Dispatcher) handleConnect(ctx context.Context, msg InboundMessage, args []string) ([]Reply, error) {
	if len(args) != 1 {
		return d.textReply(msg, msgConnectUsage), nil
	}

	apiKey := args[0]

	switch d.shortener.Validate(ctx, apiKey) {
	case StatusValid:
		if err := d.storage.Save(ctx, msg.UserID, apiKey); err != nil {
			return nil, fmt.Errorf("save binding: %w", err)
		}
		return d.textReply(msg, msgConnected), nil
	case StatusInvalid:
		return d.textReply(msg, msgInvalidKey), nil
	default:
		return d.textReply(msg, msgKeyCheckFail), nil
	}
}

func (d *Dispatcher) handleDisconnect(ctx context.Context, msg InboundMessage) ([]Reply, error) {
	err := d.storage.Delete(ctx, msg.UserID)
	switch {
	case err == nil:
		return d.textReply(msg, msgDisconnected), nil
	case IsNotFound(err):
		// Повторный /disconnect безопасен
		return d.textReply(msg, msgNotConnected), nil
	default:
		return nil, fmt.Errorf("delete binding: %w", err)
	}
}

func (d *Dispatcher) handleView(ctx context.Context, msg InboundMessage) ([]Reply, error) {
	binding, err := d.storage.Get(ctx, msg.UserID)
	switch {
	case err == nil:
		return d.markdownReply(msg, fmt.Sprintf("✅ Your connected API key: `%s`", binding.APIKey)), nil
	case IsNotFound(err):
		return d.textReply(msg, msgViewNone), nil
	default:
		return nil, fmt.Errorf("get binding: %w", err)
	}
}

func (d *Dispatcher) handleStats(ctx context.Context, msg InboundMessage) ([]Reply, error) {
	var count int64
	binding, err := d.storage.Get(ctx, msg.UserID)
	switch {
	case err == nil:
		count = binding.LinkCount
	case IsNotFound(err):
		count = 0
	default:
		return nil, fmt.Errorf("get binding: %w", err)
	}
	return d.textReply(msg, fmt.Sprintf("📊 You have shortened %d links.", count)), nil
}

// handleMessage сокращает все ссылки из текста. Ссылки обрабатываются
// последовательно в порядке появления, каждая дает отдельный ответ,
// сбой одной не прерывает обработку остальных.
func (d *Dispatcher) handleMessage(ctx context.Context, msg InboundMessage) ([]Reply, error) {
	binding, err := d.storage.Get(ctx, msg.UserID)
	if IsNotFound(err) {
		// Проверка связки идет до любых сетевых вызовов
		return d.textReply(msg, msgConnectFirst), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get binding: %w", err)
	}

	links := extractLinks(msg.Text)
	if len(links) == 0 {
		return d.textReply(msg, msgNoLinks), nil
	}

	replies := make([]Reply, 0, len(links))
	for _, link := range links {
		result := d.shortener.Shorten(ctx, binding.APIKey, link)
		switch result.Status {
		case ShortenOK:
			replies = append(replies, Reply{ChatID: msg.ChatID, Text: fmt.Sprintf("🔗 Shortened link: %s", result.ShortURL)})
			// Счетчик вспомогательный: его сбой не отменяет уже полученную ссылку
			if err := d.storage.IncrementLinks(ctx, msg.UserID); err != nil {
				d.log.Error().Err(err).Int64("user_id", msg.UserID).Msg("increment link count failed")
			}
		case ShortenRejected:
			replies = append(replies, Reply{ChatID: msg.ChatID, Text: msgShortenFail})
		default:
			replies = append(replies, Reply{ChatID: msg.ChatID, Text: msgShortenError})
		}
	}

	return replies, nil
}

func (d *Dispatcher) textReply(msg InboundMessage, text string) []Reply {
	return []Reply{{ChatID: msg.ChatID, Text: text}}
}

func (d *Dispatcher) markdownReply(msg InboundMessage, text string) []Reply {
	return []Reply{{ChatID: msg.ChatID, Text: text, Markdown: true}}
}
