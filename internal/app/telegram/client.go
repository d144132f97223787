// Package telegram содержит адаптеры транспорта: клиент Bot API,
// шардированный пул обработки событий и два тонких входа — long poll
// и вебхук.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultAPIBase = "https://api.telegram.org/bot"

// Update входящее обновление Bot API
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message сообщение пользователя
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
}

type Chat struct {
	ID int64 `json:"id"`
}

// apiEnvelope общий конверт ответа Bot API
type apiEnvelope struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// Sender отправляет ответы пользователям
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string, markdown bool) error
}

// UpdateSource отдает входящие обновления
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error)
}

// Client минимальный клиент Bot API: только методы, которые используют
// адаптеры. Таймаут задается дедлайном на каждый вызов, а не на http.Client,
// потому что long poll живет дольше обычного запроса.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

func NewClient(token string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    defaultAPIBase + token,
		timeout:    timeout,
	}
}

// do выполняет один вызов метода Bot API и возвращает поле result
func (c *Client) do(ctx context.Context, method string, params url.Values) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+method,
		strings.NewReader(params.Encode()))
	if err != nil {
		return nil, fmt.Errorf("cannot build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s failed: %w", method, err)
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("cannot decode %s response: %w", method, err)
	}
	if !envelope.OK {
		return nil, fmt.Errorf("%s rejected: %s", method, envelope.Description)
	}

	return envelope.Result, nil
}

// GetUpdates забирает очередную порцию обновлений long poll-ом
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]Update, error) {
	// Дедлайн с запасом поверх серверного таймаута long poll
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second+c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(timeoutSec))

	result, err := c.do(ctx, "getUpdates", params)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("cannot unmarshal updates: %w", err)
	}

	return updates, nil
}

// SendMessage отправляет текст в чат
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markdown bool) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("text", text)
	if markdown {
		params.Set("parse_mode", "Markdown")
	}

	_, err := c.do(ctx, "sendMessage", params)
	return err
}

// SetWebhook регистрирует адрес вебхука; секрет Telegram будет возвращать
// в заголовке каждого запроса
func (c *Client) SetWebhook(ctx context.Context, webhookURL, secret string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("url", webhookURL)
	if secret != "" {
		params.Set("secret_token", secret)
	}

	_, err := c.do(ctx, "setWebhook", params)
	return err
}

// DeleteWebhook снимает регистрацию вебхука; без этого getUpdates не работает
func (c *Client) DeleteWebhook(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err := c.do(ctx, "deleteWebhook", url.Values{})
	return err
}
