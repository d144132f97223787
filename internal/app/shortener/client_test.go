package shortener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mrhacklx/Terabis/internal/app/usecase"
)

func TestClient_Validate(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    usecase.ValidationStatus
	}{
		{
			name: "ключ принят",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"success","shortenedUrl":"http://s/probe"}`))
			},
			want: usecase.StatusValid,
		},
		{
			name: "ключ отвергнут",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"error","message":"invalid api token"}`))
			},
			want: usecase.StatusInvalid,
		},
		{
			name: "не-JSON ответ — недоступность, а не отказ",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>gateway timeout</html>`))
			},
			want: usecase.StatusUnreachable,
		},
		{
			name: "5xx — недоступность",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			want: usecase.StatusUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			client := NewClient(ts.URL, time.Second)
			assert.Equal(t, tt.want, client.Validate(context.Background(), "ABC123"))
		})
	}
}

// Пробный запрос уходит с ключом кандидата и фиксированной тестовой ссылкой
func TestClient_ValidateProbeRequest(t *testing.T) {
	var gotAPI, gotURL string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPI = r.URL.Query().Get("api")
		gotURL = r.URL.Query().Get("url")
		w.Write([]byte(`{"status":"success","shortenedUrl":"http://s/probe"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second)
	client.Validate(context.Background(), "ABC123")

	assert.Equal(t, "ABC123", gotAPI)
	assert.Equal(t, probeURL, gotURL)
}

func TestClient_Shorten(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus usecase.ShortenStatus
		wantURL    string
	}{
		{
			name: "успешное сокращение",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"success","shortenedUrl":"http://s/1"}`))
			},
			wantStatus: usecase.ShortenOK,
			wantURL:    "http://s/1",
		},
		{
			name: "сервис отказал",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"error"}`))
			},
			wantStatus: usecase.ShortenRejected,
		},
		{
			name: "успех без ссылки — испорченный ответ",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"success"}`))
			},
			wantStatus: usecase.ShortenUnreachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			client := NewClient(ts.URL, time.Second)
			result := client.Shorten(context.Background(), "ABC123", "http://x.test/a")

			assert.Equal(t, tt.wantStatus, result.Status)
			assert.Equal(t, tt.wantURL, result.ShortURL)
		})
	}
}

func TestClient_ShortenRequestParams(t *testing.T) {
	var gotAPI, gotURL string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPI = r.URL.Query().Get("api")
		gotURL = r.URL.Query().Get("url")
		w.Write([]byte(`{"status":"success","shortenedUrl":"http://s/1"}`))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second)
	result := client.Shorten(context.Background(), "ABC123", "http://x.test/a?q=1&r=2")

	require.Equal(t, usecase.ShortenOK, result.Status)
	assert.Equal(t, "ABC123", gotAPI)
	assert.Equal(t, "http://x.test/a?q=1&r=2", gotURL)
}

// Таймаут завершает запрос исходом "недоступен", а не зависанием
func TestClient_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	client := NewClient(ts.URL, 50*time.Millisecond)

	start := time.Now()
	result := client.Shorten(context.Background(), "ABC123", "http://x.test/a")

	assert.Equal(t, usecase.ShortenUnreachable, result.Status)
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_ServerDown(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	client := NewClient(ts.URL, time.Second)

	assert.Equal(t, usecase.StatusUnreachable, client.Validate(context.Background(), "ABC123"))
}
