// Package shortener реализует клиент API сервиса сокращения ссылок.
// Контракт сервиса: GET {base}?api={key}&url={target}, в ответе JSON
// с полем status и, при успехе, shortenedUrl.
package shortener

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Mrhacklx/Terabis/internal/app/usecase"
)

const (
	// probeURL фиксированная заведомо корректная ссылка для проверки ключа
	probeURL = "https://example.com"

	statusSuccess = "success"
)

// Client переиспользует одно HTTP-соединение с явным таймаутом на запрос
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

type apiResponse struct {
	Status       string `json:"status"`
	ShortenedURL string `json:"shortenedUrl"`
}

// call выполняет один запрос к сервису. Любая транспортная ошибка, не-2xx
// статус или некорректный JSON возвращаются ошибкой: для вызывающего это
// единый исход "сервис недоступен".
func (c *Client) call(ctx context.Context, apiKey, target string) (apiResponse, error) {
	params := url.Values{}
	params.Set("api", apiKey)
	params.Set("url", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return apiResponse{}, fmt.Errorf("cannot build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apiResponse{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return apiResponse{}, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return apiResponse{}, fmt.Errorf("cannot decode response: %w", err)
	}

	return out, nil
}

// Validate выполняет одну пробную попытку сокращения с кандидатским ключом.
// Повторов нет: задержка проверки остается ограниченной и видимой пользователю.
func (c *Client) Validate(ctx context.Context, apiKey string) usecase.ValidationStatus {
	out, err := c.call(ctx, apiKey, probeURL)
	if err != nil {
		return usecase.StatusUnreachable
	}
	if out.Status == statusSuccess {
		return usecase.StatusValid
	}
	return usecase.StatusInvalid
}

// Shorten сокращает одну ссылку ключом пользователя
func (c *Client) Shorten(ctx context.Context, apiKey, link string) usecase.ShortenResult {
	out, err := c.call(ctx, apiKey, link)
	if err != nil {
		return usecase.ShortenResult{Status: usecase.ShortenUnreachable}
	}

	if out.Status != statusSuccess {
		return usecase.ShortenResult{Status: usecase.ShortenRejected}
	}

	// Успешный статус без ссылки — испорченный ответ, а не отказ
	if out.ShortenedURL == "" {
		return usecase.ShortenResult{Status: usecase.ShortenUnreachable}
	}

	return usecase.ShortenResult{Status: usecase.ShortenOK, ShortURL: out.ShortenedURL}
}
