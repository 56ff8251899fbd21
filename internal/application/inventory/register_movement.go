package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/internal/domain/entity"
	"github.com/jhoicas/estoque-api/internal/domain/repository"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// StockPolicy reglas configurables del libro de movimientos.
type StockPolicy struct {
	// AllowNegativeStock permite salidas mayores al stock disponible.
	AllowNegativeStock bool
}

// RegisterMovementUseCase registra movimientos de inventario de forma transaccional:
// inserta el movimiento y actualiza products.quantity en la misma tx (Commit/Rollback).
type RegisterMovementUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	sweeper     *LowStockSweepUseCase
	policy      StockPolicy
	log         *logger.Logger
}

// NewRegisterMovementUseCase construye el caso de uso. sweeper puede ser nil (sin alertas).
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	sweeper *LowStockSweepUseCase,
	policy StockPolicy,
	log *logger.Logger,
) *RegisterMovementUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &RegisterMovementUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		sweeper:     sweeper,
		policy:      policy,
		log:         log,
	}
}

// MovementInputDTO entrada para registrar un movimiento de inventario.
// Quantity es delta para inbound/outbound y nivel absoluto para adjustment.
type MovementInputDTO struct {
	UserID    string
	ProductID string
	Type      string
	Quantity  int64
	Note      string
}

// MovementResult id del movimiento creado y cantidad resultante del producto.
type MovementResult struct {
	MovementID      string
	ProductQuantity int64
}

func (in MovementInputDTO) validate() error {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(in.ProductID) == "" {
		verr.Add("product_id", "es obligatorio")
	}
	if strings.TrimSpace(in.UserID) == "" {
		verr.Add("user_id", "es obligatorio")
	}
	if !entity.MovementType(in.Type).Valid() {
		verr.Add("type", "debe ser inbound, outbound o adjustment")
	}
	if in.Quantity < 0 {
		verr.Add("quantity", "no puede ser negativa")
	}
	return verr.OrNil()
}

// Append valida la entrada, verifica que el producto exista y, en una sola transacción,
// inserta el movimiento y aplica el cambio de cantidad. Ante cualquier fallo no queda nada escrito.
func (uc *RegisterMovementUseCase) Append(ctx context.Context, input MovementInputDTO) (*MovementResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	// un id que no es UUID no puede existir en products
	if !entity.IsValidID(input.ProductID) {
		return nil, domain.ErrNotFound
	}
	product, err := uc.productRepo.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	movType := entity.MovementType(input.Type)
	// rechazo temprano con la cantidad leída; el UPDATE condicionado de la tx sigue siendo la garantía
	if !uc.policy.AllowNegativeStock && movType.Apply(product.Quantity, input.Quantity) < 0 {
		return nil, domain.ErrInsufficientStock
	}

	movement := &entity.Movement{
		ID:        uuid.New().String(),
		ProductID: product.ID,
		UserID:    input.UserID,
		Type:      movType,
		Quantity:  input.Quantity,
		Note:      strings.TrimSpace(input.Note),
		CreatedAt: time.Now().UTC(),
	}

	var newQuantity int64
	err = uc.txRunner.Run(ctx, func(movRepo repository.MovementRepository, stockRepo repository.StockRepository) error {
		if err := movRepo.Create(ctx, movement); err != nil {
			return err
		}
		var err error
		switch movement.Type {
		case entity.MovementTypeInbound:
			newQuantity, err = stockRepo.Increase(ctx, movement.ProductID, movement.Quantity)
		case entity.MovementTypeOutbound:
			newQuantity, err = stockRepo.Decrease(ctx, movement.ProductID, movement.Quantity, uc.policy.AllowNegativeStock)
		case entity.MovementTypeAdjustment:
			newQuantity, err = stockRepo.Set(ctx, movement.ProductID, movement.Quantity)
		}
		return err
	})
	if err != nil {
		if !errors.Is(err, domain.ErrInsufficientStock) && !errors.Is(err, domain.ErrNotFound) {
			uc.log.Error().Err(err).
				Str("product_id", movement.ProductID).
				Str("type", string(movement.Type)).
				Msg("movimiento revertido")
		}
		return nil, err
	}

	uc.log.Info().
		Str("movement_id", movement.ID).
		Str("product_id", movement.ProductID).
		Str("type", string(movement.Type)).
		Int64("quantity", movement.Quantity).
		Int64("product_quantity", newQuantity).
		Msg("movimiento registrado")

	return &MovementResult{MovementID: movement.ID, ProductQuantity: newQuantity}, nil
}

// RegisterAndSweep registra el movimiento y, si el tipo lo requiere, ejecuta la revisión de
// stock bajo con recipient como destinatario. Un fallo de la revisión no revierte el movimiento:
// se devuelve en el SweepReport junto al resultado.
func (uc *RegisterMovementUseCase) RegisterAndSweep(ctx context.Context, input MovementInputDTO, recipient string) (*MovementResult, *SweepReport, error) {
	result, err := uc.Append(ctx, input)
	if err != nil {
		return nil, nil, err
	}
	report := &SweepReport{}
	if !entity.MovementType(input.Type).TriggersLowStockSweep() || uc.sweeper == nil {
		return result, report, nil
	}
	swept, sweepErr := uc.sweeper.SweepAndNotify(ctx, recipient)
	if sweepErr != nil {
		uc.log.Error().Err(sweepErr).Str("movement_id", result.MovementID).Msg("revisión de stock bajo fallida")
		return result, &SweepReport{Triggered: true, Err: fmt.Errorf("revisión de stock bajo: %w", sweepErr)}, nil
	}
	return result, swept, nil
}
