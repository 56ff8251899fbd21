package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productSelect = `
		SELECT p.id, p.category_id, COALESCE(c.name, ''), p.name, p.description, p.price,
		       p.quantity, p.quantity_minimum, p.created_at, p.updated_at
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id`

// ProductRepo implementación de ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste un producto con su cantidad inicial.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, category_id, name, description, price, quantity, quantity_minimum, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CategoryID, p.Name, p.Description, p.Price,
		p.Quantity, p.QuantityMinimum, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidID(err) {
			return domain.NewValidationError("category_id", "la categoría no existe")
		}
		return storageErr("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID con el nombre de su categoría.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, storageErr("get product", err)
	}
	return p, nil
}

// Update actualiza los datos de catálogo. quantity no figura en el SET.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products
		SET category_id = $2, name = $3, description = $4, price = $5, quantity_minimum = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.CategoryID, p.Name, p.Description, p.Price, p.QuantityMinimum, p.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) || isInvalidID(err) {
			return domain.NewValidationError("category_id", "la categoría no existe")
		}
		return storageErr("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista todos los productos ordenados por nombre.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, productSelect+` ORDER BY p.name, p.id`)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	defer rows.Close()
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storageErr("scan product", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list products", err)
	}
	return list, nil
}

// Delete elimina un producto; si tiene movimientos la FK lo impide (ErrConflict).
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		if isInvalidID(err) {
			return domain.ErrNotFound
		}
		return storageErr("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListBelowMinimum productos con quantity < quantity_minimum, mayor déficit primero.
func (r *ProductRepo) ListBelowMinimum(ctx context.Context) ([]repository.LowStockItem, error) {
	query := `
		SELECT p.id, p.name, COALESCE(c.name, ''), p.quantity, p.quantity_minimum
		FROM products p
		LEFT JOIN categories c ON c.id = p.category_id
		WHERE p.quantity < p.quantity_minimum
		ORDER BY (p.quantity_minimum - p.quantity) DESC, p.name`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, storageErr("list low stock", err)
	}
	defer rows.Close()
	items := make([]repository.LowStockItem, 0)
	for rows.Next() {
		var it repository.LowStockItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.CategoryName, &it.Quantity, &it.QuantityMinimum); err != nil {
			return nil, storageErr("scan low stock", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list low stock", err)
	}
	return items, nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.CategoryID, &p.CategoryName, &p.Name, &p.Description, &p.Price,
		&p.Quantity, &p.QuantityMinimum, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
