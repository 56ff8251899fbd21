package postgres_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/internal/infrastructure/postgres"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func sampleMovement(typ entity.MovementType, qty int64) *entity.Movement {
	return &entity.Movement{
		ID:        "mov-1",
		ProductID: "prod-1",
		UserID:    "user-1",
		Type:      typ,
		Quantity:  qty,
		CreatedAt: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// TxRunner: insert + update en una transacción
// ──────────────────────────────────────────────────────────────────────────────

func TestTxRunner_InsertaYActualiza_Commit(t *testing.T) {
	mock := newMock(t)
	mov := sampleMovement(entity.MovementTypeInbound, 5)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO movements")).
		WithArgs(mov.ID, mov.ProductID, mov.UserID, "inbound", int64(5), "", mov.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(regexp.QuoteMeta("SET quantity = quantity + $2")).
		WithArgs("prod-1", int64(5)).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}).AddRow(int64(15)))
	mock.ExpectCommit()

	var got int64
	err := postgres.NewTxRunner(mock).Run(context.Background(), func(movRepo repository.MovementRepository, stockRepo repository.StockRepository) error {
		if err := movRepo.Create(context.Background(), mov); err != nil {
			return err
		}
		var err error
		got, err = stockRepo.Increase(context.Background(), mov.ProductID, mov.Quantity)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_FalloEnUpdate_Rollback(t *testing.T) {
	mock := newMock(t)
	mov := sampleMovement(entity.MovementTypeOutbound, 3)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO movements")).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(regexp.QuoteMeta("SET quantity = quantity - $2")).
		WithArgs("prod-1", int64(3)).
		WillReturnError(errors.New("conexión cerrada"))
	mock.ExpectRollback()

	err := postgres.NewTxRunner(mock).Run(context.Background(), func(movRepo repository.MovementRepository, stockRepo repository.StockRepository) error {
		if err := movRepo.Create(context.Background(), mov); err != nil {
			return err
		}
		_, err := stockRepo.Decrease(context.Background(), mov.ProductID, mov.Quantity, true)
		return err
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStorage))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunner_FalloAlIniciar(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin().WillReturnError(errors.New("pool agotado"))

	called := false
	err := postgres.NewTxRunner(mock).Run(context.Background(), func(repository.MovementRepository, repository.StockRepository) error {
		called = true
		return nil
	})
	assert.True(t, errors.Is(err, domain.ErrStorage))
	assert.False(t, called)
}

// ──────────────────────────────────────────────────────────────────────────────
// StockRepo
// ──────────────────────────────────────────────────────────────────────────────

func TestStockRepo_Set(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SET quantity = $2")).
		WithArgs("prod-1", int64(0)).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}).AddRow(int64(0)))

	got, err := postgres.NewStockRepository(mock).Set(context.Background(), "prod-1", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepo_ProductoInexistente(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SET quantity = quantity + $2")).
		WithArgs("no-existe", int64(1)).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}))

	_, err := postgres.NewStockRepository(mock).Increase(context.Background(), "no-existe", 1)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestStockRepo_DecreaseEstricto_StockInsuficiente(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("AND quantity >= $2")).
		WithArgs("prod-1", int64(50)).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("prod-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := postgres.NewStockRepository(mock).Decrease(context.Background(), "prod-1", 50, false)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepo_DecreaseEstricto_Alcanza(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("AND quantity >= $2")).
		WithArgs("prod-1", int64(4)).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}).AddRow(int64(6)))

	got, err := postgres.NewStockRepository(mock).Decrease(context.Background(), "prod-1", 4, false)
	require.NoError(t, err)
	assert.Equal(t, int64(6), got)
}

// ──────────────────────────────────────────────────────────────────────────────
// MovementRepo: filtros y orden
// ──────────────────────────────────────────────────────────────────────────────

var movementCols = []string{"id", "product_id", "user_id", "type", "quantity", "note", "created_at", "name", "category_id", "name"}

func TestMovementRepo_List_FiltrosCombinados(t *testing.T) {
	mock := newMock(t)
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)
	date := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)
	created := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(
		"AND m.type = $1 AND p.category_id = $2 AND (m.created_at AT TIME ZONE $3)::date = $4::date ORDER BY m.created_at DESC, m.id DESC")).
		WithArgs("outbound", "cat-1", "America/Sao_Paulo", "2024-03-10").
		WillReturnRows(pgxmock.NewRows(movementCols).
			AddRow("mov-1", "prod-1", "user-1", "outbound", int64(2), "", created, "Caneta", "cat-1", "Ana"))

	list, err := postgres.NewMovementRepository(mock).List(context.Background(), repository.MovementFilter{
		Type: entity.MovementTypeOutbound, CategoryID: "cat-1", Date: &date, Location: loc,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.MovementTypeOutbound, list[0].Type)
	assert.Equal(t, "Caneta", list[0].ProductName)
	assert.Equal(t, "Ana", list[0].UserName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepo_List_SinFiltros(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 ORDER BY m.created_at DESC, m.id DESC")).
		WithArgs().
		WillReturnRows(pgxmock.NewRows(movementCols))

	list, err := postgres.NewMovementRepository(mock).List(context.Background(), repository.MovementFilter{})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

// ──────────────────────────────────────────────────────────────────────────────
// Traducción de errores de PostgreSQL
// ──────────────────────────────────────────────────────────────────────────────

func TestCategoryRepo_Delete_Referenciada(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories")).
		WithArgs("cat-1").
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := postgres.NewCategoryRepository(mock).Delete(context.Background(), "cat-1")
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestCategoryRepo_Delete_NoExiste(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories")).
		WithArgs("cat-x").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := postgres.NewCategoryRepository(mock).Delete(context.Background(), "cat-x")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUserRepo_Create_EmailDuplicado(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := postgres.NewUserRepository(mock).Create(context.Background(), &entity.User{ID: "u1", Email: "a@b.c"})
	assert.True(t, errors.Is(err, domain.ErrEmailAlreadyExists))
}

func TestProductRepo_ListBelowMinimum(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.quantity < p.quantity_minimum")).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "category", "quantity", "quantity_minimum"}).
			AddRow("prod-1", "Caneta", "", int64(4), int64(5)))

	items, err := postgres.NewProductRepository(mock).ListBelowMinimum(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "", items[0].CategoryName)
	assert.Equal(t, int64(4), items[0].Quantity)
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@h:5432/db?sslmode=disable", postgres.MigrateURL("postgres://u:p@h:5432/db?sslmode=disable"))
	assert.Equal(t, "pgx5://u@h/db", postgres.MigrateURL("postgresql://u@h/db"))
	assert.Equal(t, "pgx5://x", postgres.MigrateURL("pgx5://x"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Aritmética en la sentencia: sin lectura previa de la cantidad
// ──────────────────────────────────────────────────────────────────────────────

func TestStockRepo_Increase_AritmeticaEnLaSentencia(t *testing.T) {
	mock := newMock(t)
	mock.MatchExpectationsInOrder(true)

	// única sentencia esperada: cualquier SELECT previo haría fallar el mock
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE products SET quantity = quantity + $2, updated_at = now()") +
		`\s+WHERE id = \$1\s+RETURNING quantity`).
		WithArgs("prod-1", int64(2)).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}).AddRow(int64(12)))

	got, err := postgres.NewStockRepository(mock).Increase(context.Background(), "prod-1", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(12), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRepo_Decrease_AritmeticaEnLaSentencia(t *testing.T) {
	mock := newMock(t)
	mock.MatchExpectationsInOrder(true)

	mock.ExpectQuery(regexp.QuoteMeta("SET quantity = quantity - $2")).
		WithArgs("prod-1", int64(3)).
		WillReturnRows(pgxmock.NewRows([]string{"quantity"}).AddRow(int64(-1)))

	got, err := postgres.NewStockRepository(mock).Decrease(context.Background(), "prod-1", 3, true)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ──────────────────────────────────────────────────────────────────────────────
// Ids mal formados (22P02) y FK de movements
// ──────────────────────────────────────────────────────────────────────────────

func invalidUUID() error {
	return &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}
}

func TestProductRepo_GetByID_IdMalFormado_NoExiste(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs("abc").
		WillReturnError(invalidUUID())

	p, err := postgres.NewProductRepository(mock).GetByID(context.Background(), "abc")
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepos_IdMalFormado_NoEsErrorDeAlmacenamiento(t *testing.T) {
	ctx := context.Background()

	t.Run("categoría", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM categories WHERE id = $1")).WithArgs("abc").WillReturnError(invalidUUID())
		c, err := postgres.NewCategoryRepository(mock).GetByID(ctx, "abc")
		require.NoError(t, err)
		assert.Nil(t, c)
	})
	t.Run("usuario", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).WithArgs("abc").WillReturnError(invalidUUID())
		u, err := postgres.NewUserRepository(mock).GetByID(ctx, "abc")
		require.NoError(t, err)
		assert.Nil(t, u)
	})
	t.Run("borrar producto", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM products")).WithArgs("abc").WillReturnError(invalidUUID())
		err := postgres.NewProductRepository(mock).Delete(ctx, "abc")
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.False(t, errors.Is(err, domain.ErrStorage))
	})
	t.Run("stock", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(regexp.QuoteMeta("SET quantity = $2")).WithArgs("abc", int64(1)).WillReturnError(invalidUUID())
		_, err := postgres.NewStockRepository(mock).Set(ctx, "abc", 1)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestMovementRepo_ListByProduct_IdMalFormado_ListaVacia(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE m.product_id = $1")).
		WithArgs("abc").
		WillReturnError(invalidUUID())

	list, err := postgres.NewMovementRepository(mock).ListByProduct(context.Background(), "abc")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestMovementRepo_Create_ViolacionDeFK(t *testing.T) {
	cases := []struct {
		name       string
		constraint string
		want       error
	}{
		{"producto borrado", "movements_product_id_fkey", domain.ErrNotFound},
		{"usuario borrado", "movements_user_id_fkey", domain.ErrUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := newMock(t)
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO movements")).
				WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: tc.constraint})

			err := postgres.NewMovementRepository(mock).Create(context.Background(), sampleMovement(entity.MovementTypeInbound, 1))
			assert.True(t, errors.Is(err, tc.want))
			assert.False(t, errors.Is(err, domain.ErrStorage))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
