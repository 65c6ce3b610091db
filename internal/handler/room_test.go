package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/lodgio/room-booking/internal/repository"
)

func roomHandlerWithMock(t *testing.T) (*RoomHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRoomHandler(repository.NewRoomRepo(db)), mock
}

func adminContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(1))
	c.Set("role", "ADMIN")
	return c, rec
}

func TestCreateRoomRejectsMissingName(t *testing.T) {
	h, _ := roomHandlerWithMock(t)

	c, rec := adminContext(http.MethodPost, "/v1/rooms",
		`{"price_per_night":100,"capacity":2}`)
	if err := h.CreateRoom(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestCreateRoomRejectsNonPositivePrice(t *testing.T) {
	h, _ := roomHandlerWithMock(t)

	for _, body := range []string{
		`{"name":"Deluxe","price_per_night":0,"capacity":2}`,
		`{"name":"Deluxe","price_per_night":-5,"capacity":2}`,
	} {
		c, rec := adminContext(http.MethodPost, "/v1/rooms", body)
		if err := h.CreateRoom(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: status %d, want 400", body, rec.Code)
		}
	}
}

func TestCreateRoomSuccess(t *testing.T) {
	h, mock := roomHandlerWithMock(t)
	evicted := false
	h.Invalidate = func(context.Context) { evicted = true }
	now := time.Now()

	mock.ExpectExec("INSERT INTO rooms").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery("FROM rooms WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "price_per_night", "capacity", "available", "created_at", "updated_at",
		}).AddRow(3, "Deluxe", "sea view", 120.0, 2, true, now, now))

	c, rec := adminContext(http.MethodPost, "/v1/rooms",
		`{"name":"Deluxe","description":"sea view","price_per_night":120,"capacity":2}`)
	if err := h.CreateRoom(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"available":true`) {
		t.Fatalf("new room should default to available: %s", rec.Body.String())
	}
	if !evicted {
		t.Fatal("cached listing not evicted after room creation")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// An explicit zero price in a PATCH-style update is an error, not an
// omitted field. Presence is detected via pointer fields during bind.
func TestUpdateRoomRejectsExplicitZeroPrice(t *testing.T) {
	h, mock := roomHandlerWithMock(t)

	c, rec := adminContext(http.MethodPut, "/v1/rooms/3", `{"price_per_night":0}`)
	c.SetParamNames("id")
	c.SetParamValues("3")
	if err := h.UpdateRoom(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected DB traffic: %v", err)
	}
}

func TestUpdateRoomRejectsEmptyName(t *testing.T) {
	h, _ := roomHandlerWithMock(t)

	c, rec := adminContext(http.MethodPut, "/v1/rooms/3", `{"name":""}`)
	c.SetParamNames("id")
	c.SetParamValues("3")
	if err := h.UpdateRoom(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
}

func TestUpdateRoomNotFound(t *testing.T) {
	h, mock := roomHandlerWithMock(t)

	mock.ExpectExec("UPDATE rooms SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM rooms WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, rec := adminContext(http.MethodPut, "/v1/rooms/99", `{"price_per_night":80}`)
	c.SetParamNames("id")
	c.SetParamValues("99")
	if err := h.UpdateRoom(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestDeleteRoomNotFound(t *testing.T) {
	h, mock := roomHandlerWithMock(t)

	mock.ExpectExec("DELETE FROM rooms WHERE id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	c, rec := adminContext(http.MethodDelete, "/v1/rooms/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")
	if err := h.DeleteRoom(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestListRoomsIsPublic(t *testing.T) {
	h, mock := roomHandlerWithMock(t)
	now := time.Now()

	mock.ExpectQuery("FROM rooms WHERE available = TRUE").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "description", "price_per_night", "capacity", "available", "created_at", "updated_at",
		}).AddRow(1, "Standard", "", 50.0, 2, true, now, now))

	// no identity set on the context: listing works unauthenticated
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/rooms", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.ListRooms(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"Standard"`) {
		t.Fatalf("room missing from listing: %s", rec.Body.String())
	}
}
