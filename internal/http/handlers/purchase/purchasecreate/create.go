// Package purchasecreate реализует HTTP-обработчик оформления покупки подписки.
//
// Запись покупки и начисление дней выполняются одной транзакцией хранилища.
package purchasecreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/terramail/terramail-backend/internal/http/response"
	"github.com/terramail/terramail-backend/internal/lib/sl"
	"github.com/terramail/terramail-backend/internal/models"
	"github.com/terramail/terramail-backend/internal/storage/repository"
)

// Handler обрабатывает запросы оформления покупок.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики покупок.
type Service interface {
	AddPurchase(ctx context.Context, req models.DummyPurchase) (*models.UserPurchase, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Оформить покупку
// @Description Записывает покупку и атомарно начисляет дни подписки учетной записи.
// @Tags Purchases
// @Accept  json
// @Produce  json
// @Param request body models.DummyPurchase true "Данные покупки"
// @Success 200 {object} map[string]any "Записанная покупка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Учетная запись или тариф не найдены"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /purchases [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.purchase.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPurchase
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	purchase, err := h.service.AddPurchase(r.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Warn("user or plan not found", slog.String("user_uid", req.UserUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user or plan not found"))
			return
		}
		log.Error("failed to add purchase", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not add purchase"))
		return
	}

	log.Info("purchase recorded",
		slog.Int("id", purchase.ID),
		slog.String("user_uid", purchase.UserUID),
		slog.Int("days_added", purchase.DaysAdded))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"purchase": purchase,
	}))
}
