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

var productCols = []string{
	"id", "name", "description", "price", "image_url", "is_available",
	"is_out_of_stock", "category_id", "created_at", "updated_at",
	"id", "name", "image_url",
}

func TestProductRepoListFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery("WHERE 1=1 AND p.category_id = \\? AND p.is_available = \\? ORDER BY p.name ASC").
		WithArgs(3, true).
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow(1, "Cola", nil, "2.50", nil, true, false, 3, now, now, 3, "Drinks", nil).
			AddRow(2, "Water", nil, "1.00", nil, true, false, 3, now, now, nil, nil, nil))

	cat := uint64(3)
	avail := true
	products, err := NewProductRepo(db).List(context.Background(), model.ProductFilter{CategoryID: &cat, Available: &avail})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Category == nil || products[0].Category.Name != "Drinks" {
		t.Errorf("expected embedded category, got %+v", products[0].Category)
	}
	if products[1].Category != nil {
		t.Errorf("expected no category for dangling row, got %+v", products[1].Category)
	}
}

func TestProductRepoListNoFilters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("WHERE 1=1 ORDER BY p.name ASC").
		WithArgs().
		WillReturnRows(sqlmock.NewRows(productCols))

	products, err := NewProductRepo(db).List(context.Background(), model.ProductFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if products == nil || len(products) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", products)
	}
}

func TestProductRepoCreateUnknownCategory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO products").
		WillReturnError(&mysql.MySQLError{Number: 1452})

	_, err = NewProductRepo(db).Create(context.Background(), model.Product{Name: "Tea", Price: "1.20", CategoryID: 99})
	if !errors.Is(err, ErrInvalidReference) {
		t.Errorf("expected ErrInvalidReference, got %v", err)
	}
}

func TestProductRepoCreateBulkRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO products .* VALUES \\(\\?, \\?, \\?, \\?, \\?, \\?, \\?\\),\\(\\?, \\?, \\?, \\?, \\?, \\?, \\?\\)").
		WillReturnError(&mysql.MySQLError{Number: 1452})
	mock.ExpectRollback()

	_, err = NewProductRepo(db).CreateBulk(context.Background(), []model.Product{
		{Name: "A", Price: "1.00", CategoryID: 1},
		{Name: "B", Price: "2.00", CategoryID: 99},
	})
	if !errors.Is(err, ErrInvalidReference) {
		t.Errorf("expected ErrInvalidReference, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
