package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestFindValidReturnsLiveSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("FROM refresh_tokens WHERE token_hash = \\?").
		WithArgs("deadbeef").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at", "revoked_at"}).
			AddRow(1, 10, now.Add(24*time.Hour), now, nil))

	repo := NewRefreshTokenRepo(db)
	sess, err := repo.FindValid(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if sess.UserID != 10 || sess.TokenHash != "deadbeef" {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestFindValidRejectsExpiredSession(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("FROM refresh_tokens WHERE token_hash = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at", "revoked_at"}).
			AddRow(1, 10, now.Add(-time.Hour), now.Add(-48*time.Hour), nil))

	repo := NewRefreshTokenRepo(db)
	if _, err := repo.FindValid(context.Background(), "deadbeef"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestFindValidRejectsUnknownHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM refresh_tokens WHERE token_hash = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at", "revoked_at"}))

	repo := NewRefreshTokenRepo(db)
	if _, err := repo.FindValid(context.Background(), "unknown"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
