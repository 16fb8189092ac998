// Package health реализует HTTP-обработчик проверки работоспособности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/terramail/terramail-backend/internal/http/response"
	"github.com/terramail/terramail-backend/internal/lib/sl"
)

// Handler обрабатывает запросы проверки работоспособности.
type Handler struct {
	log    *slog.Logger
	pinger Pinger
}

// Pinger описывает проверку доступности хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New создает новый Handler.
func New(log *slog.Logger, pinger Pinger) *Handler {
	return &Handler{
		log:    log,
		pinger: pinger,
	}
}

// ServeHTTP godoc
// @Summary Проверка работоспособности
// @Description Проверяет доступность базы данных. При недоступности возвращает 503.
// @Tags Health
// @Produce  json
// @Success 200 {object} map[string]any "Сервис работает"
// @Failure 503 {object} response.ErrorResponse "База данных недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if err := h.pinger.Ping(r.Context()); err != nil {
		log.Error("database is not reachable", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("database is not reachable"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"database": "up",
	}))
}
