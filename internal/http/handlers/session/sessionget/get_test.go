package sessionget

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/terramail/terramail-backend/internal/models"
	"github.com/terramail/terramail-backend/internal/storage/repository"
)

type SessionServiceMock struct{ mock.Mock }

func (m *SessionServiceMock) GetOrCreateCurrent(ctx context.Context, userUID string) (*models.ProcessingSession, error) {
	args := m.Called(ctx, userUID)
	sess, _ := args.Get(0).(*models.ProcessingSession)
	return sess, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestSessionGetHandler_ServeHTTP(t *testing.T) {
	logger := newNoopLogger()

	session := &models.ProcessingSession{ID: 5, UserUID: "uid-123", Approved: 3}

	tests := []struct {
		name           string
		mockSession    *models.ProcessingSession
		mockErr        error
		wantStatusCode int
		wantStatus     string
		wantError      string
	}{
		{
			name:           "существующая или новая сессия",
			mockSession:    session,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "пользователь не найден",
			mockErr:        repository.ErrNotFound,
			wantStatusCode: http.StatusNotFound,
			wantStatus:     "Error",
			wantError:      "user not found",
		},
		{
			name:           "внутренняя ошибка",
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantStatus:     "Error",
			wantError:      "could not get session",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(SessionServiceMock)
			serviceMock.On("GetOrCreateCurrent", mock.Anything, "uid-123").
				Return(tt.mockSession, tt.mockErr).Once()

			handler := New(logger, serviceMock)

			req := httptest.NewRequest(http.MethodGet, "/sessions/uid-123", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("userID", "uid-123")
			ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
			ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
			req = req.WithContext(ctx)

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
				sessData, ok := data["session"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, float64(session.ID), sessData["id"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
