// Package userban реализует HTTP-обработчик переключения блокировки учетной записи.
package userban

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
	"github.com/terramail/terramail-backend/internal/storage/repository"
)

// Handler обрабатывает запросы переключения бана.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики переключения бана.
type Service interface {
	ToggleBan(ctx context.Context, uid string) (bool, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Переключить блокировку
// @Description Инвертирует флаг бана учетной записи и возвращает новое значение.
// @Tags Users
// @Produce  json
// @Param userID path string true "UID учетной записи"
// @Success 200 {object} map[string]any "Новое состояние блокировки"
// @Failure 404 {object} response.ErrorResponse "Учетная запись не найдена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/{userID}/ban [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.ban"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "userID")

	banned, err := h.service.ToggleBan(r.Context(), uid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("user not found", slog.String("uid", uid))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
			return
		}
		log.Error("failed to toggle ban", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not toggle ban"))
		return
	}

	log.Info("ban toggled", slog.String("uid", uid), slog.Bool("is_banned", banned))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"is_banned": banned,
	}))
}
