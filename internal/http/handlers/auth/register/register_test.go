package register

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

type AuthServiceMock struct{ mock.Mock }

func (m *AuthServiceMock) Register(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestRegisterHandler_ServeHTTP(t *testing.T) {
	logger := newNoopLogger()

	user := &models.User{
		UUID:  "uid-123",
		Email: "new@example.com",
		Role:  "user",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockUser       *models.User
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "успешная регистрация",
			requestBody:    Request{Email: "new@example.com", Password: "password123"},
			mockUser:       user,
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - bad email",
			requestBody:    Request{Email: "not-an-email", Password: "password123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Email must be a valid email",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - short password",
			requestBody:    Request{Email: "new@example.com", Password: "123"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is too short",
			wantStatus:     "Error",
		},
		{
			name:           "повторная почта",
			requestBody:    Request{Email: "new@example.com", Password: "password123"},
			mockErr:        repository.ErrEmailTaken,
			wantStatusCode: http.StatusConflict,
			wantError:      "email already registered",
			wantStatus:     "Error",
		},
		{
			name:           "внутренняя ошибка",
			requestBody:    Request{Email: "new@example.com", Password: "password123"},
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "could not register user",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(AuthServiceMock)
			handler := New(logger, serviceMock)

			if tt.mockUser != nil || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				serviceMock.On("Register", mock.Anything, req.Email, req.Password).
					Return(tt.mockUser, tt.mockErr).Once()
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

			req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			} else {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				userData, ok := data["user"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, user.Email, userData["email"])
			}

			serviceMock.AssertExpectations(t)
		})
	}
}
