package purchasecreate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/terramail/terramail-backend/internal/models"
	"github.com/terramail/terramail-backend/internal/storage/repository"
)

type AccountServiceMock struct{ mock.Mock }

func (m *AccountServiceMock) AddPurchase(ctx context.Context, req models.DummyPurchase) (*models.UserPurchase, error) {
	args := m.Called(ctx, req)
	purchase, _ := args.Get(0).(*models.UserPurchase)
	return purchase, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestPurchaseCreateHandler_ServeHTTP(t *testing.T) {
	logger := newNoopLogger()

	validReq := models.DummyPurchase{
		UserUID:    "d0f7a6b0-0b1e-4a7e-9a8a-1c2d3e4f5a6b",
		PlanID:     7,
		AmountPaid: 990,
	}
	purchase := &models.UserPurchase{ID: 1, UserUID: validReq.UserUID, DaysAdded: 30, AmountPaid: 990}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockPurchase   *models.UserPurchase
		mockErr        error
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:           "успешная покупка",
			requestBody:    validReq,
			mockPurchase:   purchase,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantStatus:     "Error",
			wantError:      "invalid request body",
		},
		{
			name:           "validation error - not a uuid",
			requestBody:    models.DummyPurchase{UserUID: "abc", PlanID: 7, AmountPaid: 990},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantStatus:     "Error",
			wantError:      "field UserUID can contain only uuid",
		},
		{
			name:           "тариф или пользователь не найдены",
			requestBody:    validReq,
			mockErr:        repository.ErrNotFound,
			wantStatusCode: http.StatusNotFound,
			wantStatus:     "Error",
			wantError:      "user or plan not found",
		},
		{
			name:           "внутренняя ошибка",
			requestBody:    validReq,
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "could not add purchase",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(AccountServiceMock)
			handler := New(logger, serviceMock)

			if tt.mockPurchase != nil || tt.mockErr != nil {
				serviceMock.On("AddPurchase", mock.Anything, tt.requestBody.(models.DummyPurchase)).
					Return(tt.mockPurchase, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/purchases", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				purchaseData, ok := data["purchase"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, float64(purchase.DaysAdded), purchaseData["days_added"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
