package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. Quantity solo se fija al crear;
// después cambia únicamente vía movimientos.
type ProductUseCase struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, categoryRepo: categoryRepo}
}

// Create crea un nuevo producto con su stock inicial. QuantityMinimum por defecto 5.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	verr := &domain.ValidationError{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		verr.Add("name", "es obligatorio")
	}
	if in.Price.LessThan(decimal.Zero) {
		verr.Add("price", "no puede ser negativo")
	}
	if in.Quantity < 0 {
		verr.Add("quantity", "no puede ser negativa")
	}
	minimum := entity.DefaultQuantityMinimum
	if in.QuantityMinimum != nil {
		minimum = *in.QuantityMinimum
		if minimum < 0 {
			verr.Add("quantity_minimum", "no puede ser negativa")
		}
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		verr.Add("category_id", "es obligatorio")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	category, err := uc.requireCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	product := &entity.Product{
		ID:              uuid.New().String(),
		CategoryID:      category.ID,
		CategoryName:    category.Name,
		Name:            name,
		Description:     strings.TrimSpace(in.Description),
		Price:           in.Price,
		Quantity:        in.Quantity,
		QuantityMinimum: minimum,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID; ErrNotFound si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	if !entity.IsValidID(id) {
		return nil, domain.ErrNotFound
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// Update actualiza datos de catálogo. No permite modificar Quantity (se maneja vía movimientos).
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if !entity.IsValidID(id) {
		return nil, domain.ErrNotFound
	}
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	verr := &domain.ValidationError{}
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name == "" {
			verr.Add("name", "no puede estar vacío")
		} else {
			product.Name = name
		}
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		if in.Price.LessThan(decimal.Zero) {
			verr.Add("price", "no puede ser negativo")
		} else {
			product.Price = *in.Price
		}
	}
	if in.QuantityMinimum != nil {
		if *in.QuantityMinimum < 0 {
			verr.Add("quantity_minimum", "no puede ser negativa")
		} else {
			product.QuantityMinimum = *in.QuantityMinimum
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	if in.CategoryID != nil && *in.CategoryID != product.CategoryID {
		category, err := uc.requireCategory(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		product.CategoryID = category.ID
		product.CategoryName = category.Name
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// List lista los productos con el nombre de su categoría, ordenados por nombre.
func (uc *ProductUseCase) List(ctx context.Context) ([]dto.ProductResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return items, nil
}

// Delete elimina un producto por ID. ErrConflict si tiene movimientos registrados.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	if !entity.IsValidID(id) {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}

// requireCategory valida que la categoría exista; la referencia inexistente es un error de entrada.
func (uc *ProductUseCase) requireCategory(ctx context.Context, id string) (*entity.Category, error) {
	if !entity.IsValidID(id) {
		return nil, domain.NewValidationError("category_id", "la categoría no existe")
	}
	category, err := uc.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.NewValidationError("category_id", "la categoría no existe")
	}
	return category, nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		Quantity:        p.Quantity,
		QuantityMinimum: p.QuantityMinimum,
		LowStock:        p.IsBelowMinimum(),
		CategoryID:      p.CategoryID,
		CategoryName:    p.CategoryName,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
