package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/estoque-api/internal/application/dto"
	"github.com/jhoicas/estoque-api/internal/domain"
	"github.com/jhoicas/estoque-api/pkg/logger"
)

// MovementRegistrar registra un movimiento y dispara la revisión de stock bajo.
type MovementRegistrar interface {
	RegisterMovementFromRequest(ctx context.Context, userID, email string, in dto.RegisterMovementRequest) (*dto.MovementCreatedResponse, error)
}

// MovementQuerier consulta el historial de movimientos.
type MovementQuerier interface {
	ListMovements(ctx context.Context, in dto.MovementFilterRequest) ([]dto.MovementResponse, error)
	ListMovementsForProduct(ctx context.Context, productID string) ([]dto.MovementResponse, error)
}

// MovementReporter genera el PDF del historial filtrado.
type MovementReporter interface {
	GenerateReport(ctx context.Context, in dto.MovementFilterRequest) ([]byte, error)
}

// MovementHandler maneja el libro de movimientos (protegido).
type MovementHandler struct {
	register MovementRegistrar
	query    MovementQuerier
	report   MovementReporter
	log      *logger.Logger
}

// NewMovementHandler construye el handler. report puede ser nil (ruta de PDF deshabilitada).
func NewMovementHandler(register MovementRegistrar, query MovementQuerier, report MovementReporter, log *logger.Logger) *MovementHandler {
	return &MovementHandler{register: register, query: query, report: report, log: log}
}

// Register godoc
// @Summary      Registrar movimiento de inventario
// @Description  Agrega el movimiento y actualiza la cantidad del producto en una sola transacción.
// @Description  Salidas y ajustes disparan la revisión de stock bajo; su fallo no revierte el movimiento.
// @Tags         movements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header  string                       false  "clave para reintentos seguros"
// @Param        body             body    dto.RegisterMovementRequest  true   "product_id, type, quantity, note"
// @Success      201  {object}  dto.MovementCreatedResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.register.RegisterMovementFromRequest(c.UserContext(), GetUserID(c), GetEmail(c), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Historial de movimientos
// @Description  Filtros opcionales combinables con AND. Orden: más reciente primero.
// @Tags         movements
// @Produce      json
// @Security     BearerAuth
// @Param        type         query  string  false  "inbound | outbound | adjustment"
// @Param        category_id  query  string  false  "ID de categoría"
// @Param        date         query  string  false  "día calendario YYYY-MM-DD"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	in, err := parseFilter(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out, err := h.query.ListMovements(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// ListByProduct godoc
// @Summary      Movimientos de un producto
// @Tags         movements
// @Produce      json
// @Security     BearerAuth
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}  dto.MovementResponse
// @Router       /api/products/{id}/movements [get]
func (h *MovementHandler) ListByProduct(c *fiber.Ctx) error {
	out, err := h.query.ListMovementsForProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(out)
}

// Report godoc
// @Summary      Reporte PDF de movimientos
// @Tags         movements
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        type         query  string  false  "inbound | outbound | adjustment"
// @Param        category_id  query  string  false  "ID de categoría"
// @Param        date         query  string  false  "día calendario YYYY-MM-DD"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements/report.pdf [get]
func (h *MovementHandler) Report(c *fiber.Ctx) error {
	if h.report == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "NOT_IMPLEMENTED", Message: "reporte PDF no disponible"})
	}
	in, err := parseFilter(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	pdf, err := h.report.GenerateReport(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="movimientos.pdf"`)
	return c.Send(pdf)
}

func parseFilter(c *fiber.Ctx) (dto.MovementFilterRequest, error) {
	var in dto.MovementFilterRequest
	if err := c.QueryParser(&in); err != nil {
		return in, domain.NewValidationError("query", "parámetros inválidos")
	}
	return in, validateStruct(in)
}
