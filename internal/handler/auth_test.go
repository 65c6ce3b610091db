package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/lodgio/room-booking/internal/config"
	"github.com/lodgio/room-booking/internal/repository"
	"github.com/lodgio/room-booking/internal/utils"
)

func authHandlerWithMock(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4, // min cost keeps the test fast
	}
	return NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewRefreshTokenRepo(db)), mock
}

func jsonContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	h, _ := authHandlerWithMock(t)

	c, rec := jsonContext(http.MethodPost, "/v1/auth/register",
		`{"name":"A","email":"a@example.com"}`) // no password
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	h, mock := authHandlerWithMock(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errDuplicate{})

	c, rec := jsonContext(http.MethodPost, "/v1/auth/register",
		`{"name":"A","email":"a@example.com","password":"secret"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", rec.Code)
	}
}

// errDuplicate mimics the driver's duplicate-key error text.
type errDuplicate struct{}

func (errDuplicate) Error() string { return "Error 1062: Duplicate entry 'a@example.com'" }

func TestRegisterIssuesTokenPair(t *testing.T) {
	h, mock := authHandlerWithMock(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(10, 1))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := jsonContext(http.MethodPost, "/v1/auth/register",
		`{"name":"A","email":"A@Example.com","password":"secret"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		User struct {
			ID    uint64 `json:"id"`
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
		Access  struct{ Token string } `json:"access"`
		Refresh struct{ Token string } `json:"refresh"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.User.ID != 10 || resp.User.Role != "CUSTOMER" {
		t.Fatalf("unexpected user part: %+v", resp.User)
	}
	if resp.User.Email != "a@example.com" {
		t.Fatalf("email not normalized: %q", resp.User.Email)
	}
	if resp.Access.Token == "" || len(resp.Refresh.Token) != 96 {
		t.Fatalf("token pair malformed: access=%q refreshLen=%d", resp.Access.Token, len(resp.Refresh.Token))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock := authHandlerWithMock(t)

	hash, err := utils.HashPassword("right-password", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	now := time.Now()
	mock.ExpectQuery("FROM users WHERE email=\\?").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "password_hash", "role", "created_at", "updated_at",
		}).AddRow(10, "A", "a@example.com", hash, "CUSTOMER", now, now))

	c, rec := jsonContext(http.MethodPost, "/v1/auth/login",
		`{"email":"a@example.com","password":"wrong-password"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	h, mock := authHandlerWithMock(t)

	mock.ExpectQuery("FROM users WHERE email=\\?").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "password_hash", "role", "created_at", "updated_at",
		}))

	c, rec := jsonContext(http.MethodPost, "/v1/auth/login",
		`{"email":"nobody@example.com","password":"whatever"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	h, mock := authHandlerWithMock(t)

	raw := strings.Repeat("ab", 48)
	hash := utils.HashRefreshRaw(raw)
	now := time.Now()

	mock.ExpectQuery("FROM refresh_tokens WHERE token_hash = \\?").
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at", "revoked_at"}).
			AddRow(1, 10, now.Add(24*time.Hour), now, nil))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at = NOW").
		WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM users WHERE id=\\?").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "email", "password_hash", "role", "created_at", "updated_at",
		}).AddRow(10, "A", "a@example.com", "x", "CUSTOMER", now, now))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(2, 1))

	c, rec := jsonContext(http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+raw+`"}`)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), raw) {
		t.Fatal("old refresh token returned; rotation did not happen")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	h, mock := authHandlerWithMock(t)

	raw := strings.Repeat("cd", 48)
	now := time.Now()

	mock.ExpectQuery("FROM refresh_tokens WHERE token_hash = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at", "revoked_at"}).
			AddRow(1, 10, now.Add(24*time.Hour), now, now.Add(-time.Hour)))

	c, rec := jsonContext(http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+raw+`"}`)
	if err := h.Refresh(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
}

func TestDeleteUserRevokesSessionsFirst(t *testing.T) {
	h, mock := authHandlerWithMock(t)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at = NOW").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM users WHERE id=\\?").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := jsonContext(http.MethodDelete, "/v1/auth/users/10", "")
	c.SetParamNames("id")
	c.SetParamValues("10")
	if err := h.DeleteUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteUserNotFound(t *testing.T) {
	h, mock := authHandlerWithMock(t)

	// Session revocation runs first and is a no-op for an unknown id.
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at = NOW").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM users WHERE id=\\?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, rec := jsonContext(http.MethodDelete, "/v1/auth/users/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")
	if err := h.DeleteUser(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}
