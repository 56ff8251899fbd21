package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición: productos bajo mínimo con la cantidad
// sugerida de pedido para volver a 1.5 veces el mínimo.
type ReplenishmentUseCase struct {
	productRepo repository.ProductRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(productRepo repository.ProductRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{productRepo: productRepo}
}

// IdealQuantity nivel objetivo de stock para un mínimo dado (1.5x, redondeado hacia arriba).
func IdealQuantity(minimum int64) int64 {
	return (minimum*3 + 1) / 2
}

// GenerateReplenishmentList devuelve los productos bajo mínimo ordenados por mayor déficit.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	rawItems, err := uc.productRepo.ListBelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(rawItems))
	for _, item := range rawItems {
		alert := NewLowStockAlert(item)
		ideal := IdealQuantity(item.QuantityMinimum)
		suggested := ideal - item.Quantity
		if suggested < 0 {
			suggested = 0
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			CategoryName:      alert.CategoryName,
			CurrentQuantity:   item.Quantity,
			QuantityMinimum:   item.QuantityMinimum,
			IdealQuantity:     ideal,
			SuggestedOrderQty: suggested,
		})
	}

	// Mayor déficit primero; desempate por nombre para un orden estable.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		defA := a.QuantityMinimum - a.CurrentQuantity
		defB := b.QuantityMinimum - b.CurrentQuantity
		if defA != defB {
			return defA > defB
		}
		return a.ProductName < b.ProductName
	})

	// Prioridad 1 = más urgente
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}
