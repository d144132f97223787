package telegram

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	appmiddleware "github.com/Mrhacklx/Terabis/internal/app/middleware"
)

// WebhookHandler принимает обновления от Telegram по HTTP и отдает их
// в тот же Processor, что и long poll
type WebhookHandler struct {
	processor *Processor
	router    *chi.Mux
}

func NewWebhookHandler(processor *Processor, secret string) *WebhookHandler {
	h := &WebhookHandler{
		processor: processor,
		router:    chi.NewRouter(),
	}
	h.setupRoutes(secret)
	return h
}

func (h *WebhookHandler) setupRoutes(secret string) {
	h.router.Use(appmiddleware.RequestLogger)
	h.router.Use(chimiddleware.Recoverer)
	h.router.Use(appmiddleware.GzipRequest)

	h.router.Get("/ping", h.handlePing)

	h.router.Group(func(r chi.Router) {
		r.Use(appmiddleware.SecretToken(secret))
		r.Post("/updates", h.handleUpdate)
	})
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// handleUpdate ставит обновление в очередь и сразу подтверждает прием:
// Telegram повторит доставку сам, если ответ не дошел
func (h *WebhookHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	h.processor.Submit(update)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"ok":true}`))
}

func (h *WebhookHandler) handlePing(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
