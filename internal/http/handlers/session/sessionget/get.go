// Package sessionget реализует HTTP-обработчик получения текущей сессии обработки.
//
// Если у учетной записи ещё нет сессий, создаётся новая пустая.
package sessionget

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/terramail/terramail-backend/internal/http/response"
	"github.com/terramail/terramail-backend/internal/lib/sl"
	"github.com/terramail/terramail-backend/internal/models"
	"github.com/terramail/terramail-backend/internal/storage/repository"
)

// Handler обрабатывает запросы текущей сессии обработки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики сессий обработки.
type Service interface {
	GetOrCreateCurrent(ctx context.Context, userUID string) (*models.ProcessingSession, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Текущая сессия обработки
// @Description Возвращает последнюю сессию обработки учетной записи, создавая её при отсутствии.
// @Tags Sessions
// @Produce  json
// @Param userID path string true "UID учетной записи"
// @Success 200 {object} map[string]any "Сессия обработки"
// @Failure 404 {object} response.ErrorResponse "Учетная запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /sessions/{userID} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.session.get"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "userID")

	session, err := h.service.GetOrCreateCurrent(r.Context(), userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("user not found", slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to get session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get session"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"session": session,
	}))
}
