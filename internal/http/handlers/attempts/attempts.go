// Package attempts реализует административный HTTP-обработчик журнала попыток входа.
package attempts

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/terramail/terramail-backend/internal/http/response"
	"github.com/terramail/terramail-backend/internal/lib/sl"
	"github.com/terramail/terramail-backend/internal/models"
)

// defaultLimit — количество записей журнала по умолчанию.
const defaultLimit = 100

// Handler обрабатывает запросы журнала попыток входа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики журнала попыток.
type Service interface {
	ListRecent(ctx context.Context, limit int) ([]*models.LoginAttempt, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Журнал попыток входа
// @Description Возвращает последние попытки входа, новые сверху. Параметр limit необязателен.
// @Tags Attempts
// @Produce  json
// @Param limit query int false "Максимум записей (по умолчанию 100)"
// @Success 200 {object} map[string]any "Журнал попыток"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /attempts [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.attempts"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			log.Warn("invalid limit, using default", slog.String("limit", raw))
		} else {
			limit = parsed
		}
	}

	attempts, err := h.service.ListRecent(r.Context(), limit)
	if err != nil {
		log.Error("failed to list attempts", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list attempts"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"attempts": attempts,
	}))
}
