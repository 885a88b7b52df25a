package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/restaurant-order-service/internal/model"
)

var oauthCols = []string{"id", "provider", "provider_id", "access_token", "refresh_token", "user_id", "created_at", "updated_at"}

func TestOAuthAccountRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectExec("INSERT INTO oauth_accounts").
		WithArgs(sqlmock.AnyArg(), "google", "g-1", "at", nil, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM oauth_accounts WHERE provider=\\? AND provider_id=\\?").
		WithArgs("google", "g-1").
		WillReturnRows(sqlmock.NewRows(oauthCols).AddRow("0b6c0e9e-1111-4c2d-8f00-000000000001", "google", "g-1", "at", nil, 4, now, now))

	acc, err := NewOAuthAccountRepo(db).Create(context.Background(), "google", "g-1", 4, model.ProviderTokens{AccessToken: "at"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if acc.UserID != 4 || acc.RefreshToken != nil || acc.AccessToken == nil || *acc.AccessToken != "at" {
		t.Errorf("unexpected account: %+v", acc)
	}
}

func TestOAuthAccountRepoCreateDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO oauth_accounts").
		WillReturnError(&mysql.MySQLError{Number: 1062})

	_, err = NewOAuthAccountRepo(db).Create(context.Background(), "google", "g-1", 4, model.ProviderTokens{})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestOAuthAccountRepoGetByProviderNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT .* FROM oauth_accounts").WillReturnRows(sqlmock.NewRows(oauthCols))

	_, err = NewOAuthAccountRepo(db).GetByProvider(context.Background(), "google", "nope")
	if !errors.Is(err, ErrOAuthAccountNotFound) {
		t.Errorf("expected ErrOAuthAccountNotFound, got %v", err)
	}
}

func TestOAuthAccountRepoUpdateTokensKeepsRefresh(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE oauth_accounts SET access_token=\\?, refresh_token=COALESCE\\(\\?, refresh_token\\)").
		WithArgs("new-at", nil, "acc-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewOAuthAccountRepo(db).UpdateTokens(context.Background(), "acc-1", model.ProviderTokens{AccessToken: "new-at"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
