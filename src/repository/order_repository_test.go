package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"ordersapi/src/model"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		DSN:                  "sqlmock_db_0",
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	})

	gdb, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to open gorm DB with sqlmock: %v", err)
	}

	return gdb, mock
}

func orderRows(returned ...model.Order) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "cliente_id", "cliente_nombre", "tipo_operacion", "estado",
		"created_at", "updated_at",
	})
	for _, order := range returned {
		rows.AddRow(order.ID, order.ClienteID, order.ClienteNombre,
			order.TipoOperacion, order.Estado, order.CreatedAt, order.UpdatedAt)
	}
	return rows
}

func TestOrderRepositoryFindByEstado(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &OrderRepository{db: mockDB}

	createdAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	orders := []model.Order{
		{ID: "o-2", ClienteID: "c-1", ClienteNombre: "Acme SA", TipoOperacion: "Compra", Estado: "ejecutada", CreatedAt: createdAt.Add(time.Hour), UpdatedAt: createdAt.Add(time.Hour)},
		{ID: "o-1", ClienteID: "c-1", ClienteNombre: "Acme SA", TipoOperacion: "Venta", Estado: "ejecutada", CreatedAt: createdAt, UpdatedAt: createdAt},
	}

	t.Run("matches case-insensitively", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "ordenes" WHERE LOWER(estado) = LOWER($1) ORDER BY created_at DESC`)).
			WithArgs("Ejecutada").
			WillReturnRows(orderRows(orders...))

		results, err := repo.FindByEstado(context.Background(), "Ejecutada")
		if err != nil {
			t.Fatalf("unexpected error fetching orders by status: %v", err)
		}

		if len(results) != 2 {
			t.Fatalf("expected 2 orders, got %d", len(results))
		}

		if results[0].ID != "o-2" || results[1].ID != "o-1" {
			t.Fatalf("orders not returned newest first: %+v", results)
		}
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestOrderRepositoryFindByCliente(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &OrderRepository{db: mockDB}

	createdAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	order := model.Order{ID: "o-1", ClienteID: "c-7", ClienteNombre: "Beta SRL", TipoOperacion: "Compra", Estado: "pendiente", CreatedAt: createdAt, UpdatedAt: createdAt}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "ordenes" WHERE cliente_id = $1 ORDER BY created_at DESC`)).
		WithArgs("c-7").
		WillReturnRows(orderRows(order))

	results, err := repo.FindByCliente(context.Background(), "c-7")
	if err != nil {
		t.Fatalf("unexpected error fetching orders by client: %v", err)
	}

	if len(results) != 1 || results[0].ClienteID != "c-7" {
		t.Fatalf("unexpected orders returned: %+v", results)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestOrderRepositoryFindEnviadas(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &OrderRepository{db: mockDB}

	updatedAt := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	order := model.Order{ID: "o-9", ClienteID: "c-1", ClienteNombre: "Acme SA", TipoOperacion: "Venta", Estado: "En Proceso", CreatedAt: updatedAt, UpdatedAt: updatedAt}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "ordenes" WHERE LOWER(estado) IN ($1,$2) ORDER BY updated_at DESC`)).
		WithArgs("en proceso", "ejecutada").
		WillReturnRows(orderRows(order))

	results, err := repo.FindEnviadas(context.Background())
	if err != nil {
		t.Fatalf("unexpected error fetching sent orders: %v", err)
	}

	if len(results) != 1 || results[0].Estado != "En Proceso" {
		t.Fatalf("unexpected orders returned: %+v", results)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

func TestOrderRepositoryCountByEstado(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := &OrderRepository{db: mockDB}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "ordenes" WHERE LOWER(estado) = LOWER($1)`)).
		WithArgs("pendiente").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountByEstado(context.Background(), "pendiente")
	if err != nil {
		t.Fatalf("unexpected error counting orders: %v", err)
	}

	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}
