// Package purchaselist реализует HTTP-обработчик истории покупок учетной записи.
package purchaselist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/terramail/terramail-backend/internal/http/response"
	"github.com/terramail/terramail-backend/internal/lib/sl"
	"github.com/terramail/terramail-backend/internal/models"
)

// Handler обрабатывает запросы истории покупок.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики истории покупок.
type Service interface {
	ListPurchases(ctx context.Context, userUID string) ([]*models.PurchaseWithPlan, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary История покупок
// @Description Возвращает покупки учетной записи с названиями тарифов, новые сверху.
// @Tags Purchases
// @Produce  json
// @Param userID path string true "UID учетной записи"
// @Success 200 {object} map[string]any "Список покупок"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /purchases/{userID} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.purchase.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := chi.URLParam(r, "userID")

	purchases, err := h.service.ListPurchases(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list purchases", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list purchases"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"purchases": purchases,
	}))
}
