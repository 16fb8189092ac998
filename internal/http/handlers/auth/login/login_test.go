package login

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
	"github.com/terramail/terramail-backend/internal/services/auth"
)

type AuthServiceMock struct{ mock.Mock }

func (m *AuthServiceMock) Login(ctx context.Context, email, password, ipAddress string) (*models.User, string, error) {
	args := m.Called(ctx, email, password, ipAddress)
	user, _ := args.Get(0).(*models.User)
	return user, args.String(1), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	logger := newNoopLogger()

	user := &models.User{
		UUID:  "uid-123",
		Email: "user@example.com",
		Role:  "user",
	}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockUser       *models.User
		mockToken      string
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "успешный вход",
			requestBody:    Request{Email: "user@example.com", Password: "password123"},
			mockUser:       user,
			mockToken:      "tok",
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
			name:           "validation error - missing password",
			requestBody:    Request{Email: "user@example.com"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "блокировка по числу неудач",
			requestBody:    Request{Email: "user@example.com", Password: "password123"},
			mockErr:        auth.ErrTooManyAttempts,
			wantStatusCode: http.StatusTooManyRequests,
			wantError:      "too many failed attempts, try again later",
			wantStatus:     "Error",
		},
		{
			name:           "неверный пароль",
			requestBody:    Request{Email: "user@example.com", Password: "wrongpass1"},
			mockErr:        auth.ErrInvalidCredentials,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid email or password",
			wantStatus:     "Error",
		},
		{
			name:           "забаненная учетная запись",
			requestBody:    Request{Email: "user@example.com", Password: "password123"},
			mockErr:        auth.ErrUserBanned,
			wantStatusCode: http.StatusForbidden,
			wantError:      "account is banned",
			wantStatus:     "Error",
		},
		{
			name:           "внутренняя ошибка",
			requestBody:    Request{Email: "user@example.com", Password: "password123"},
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal error",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(AuthServiceMock)
			handler := New(logger, serviceMock)

			if tt.mockUser != nil || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				serviceMock.On("Login", mock.Anything, req.Email, req.Password, mock.Anything).
					Return(tt.mockUser, tt.mockToken, tt.mockErr).Once()
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

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(bodyBytes))
			req.RemoteAddr = "10.0.0.1:54321"
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
				assert.Equal(t, tt.mockToken, data["token"])
				userData, ok := data["user"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, user.Email, userData["email"])
				// хэш пароля не должен утекать в ответ
				_, hasHash := userData["password_hash"]
				assert.False(t, hasHash)
			}

			serviceMock.AssertExpectations(t)
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "192.168.1.7:9999"
	assert.Equal(t, "192.168.1.7", clientIP(req))

	req.RemoteAddr = "192.168.1.7"
	assert.Equal(t, "192.168.1.7", clientIP(req))
}
