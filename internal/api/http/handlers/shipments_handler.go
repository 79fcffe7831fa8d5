package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/portkey-logistics/portkey/internal/api/dto"
	"github.com/portkey-logistics/portkey/internal/domain"
	"github.com/portkey-logistics/portkey/internal/service"
	apperrors "github.com/portkey-logistics/portkey/pkg/util"
)

// ShipmentStore is the shipment service surface used by the handlers.
type ShipmentStore interface {
	Create(ctx context.Context, actor service.Actor, input service.ShipmentCreateInput) (*domain.Shipment, error)
	List(ctx context.Context, actor service.Actor, filter service.ShipmentListFilter) ([]domain.Shipment, error)
	Get(ctx context.Context, actor service.Actor, id string) (*domain.Shipment, error)
	Update(ctx context.Context, actor service.Actor, id string, input service.ShipmentUpdateInput) (*domain.Shipment, error)
	Delete(ctx context.Context, actor service.Actor, id string) error
}

// DocumentStore is the document service surface used by the handlers.
type DocumentStore interface {
	Attach(ctx context.Context, actor service.Actor, shipmentID string, input service.DocumentCreateInput) (*domain.ShipmentDocument, error)
	List(ctx context.Context, actor service.Actor, shipmentID string) ([]domain.ShipmentDocument, error)
	Delete(ctx context.Context, actor service.Actor, shipmentID, documentID string) error
}

// ShipmentsHandler manages shipment and document endpoints.
type ShipmentsHandler struct {
	shipments ShipmentStore
	documents DocumentStore
}

// NewShipmentsHandler constructs handler.
func NewShipmentsHandler(shipments ShipmentStore, documents DocumentStore) *ShipmentsHandler {
	return &ShipmentsHandler{shipments: shipments, documents: documents}
}

// CreateShipment POST /api/shipments.
func (h *ShipmentsHandler) CreateShipment(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateShipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	arrival, err := parseDate("arrival_date", req.ArrivalDate)
	if err != nil {
		return err
	}

	shipment, err := h.shipments.Create(c.UserContext(), actor, service.ShipmentCreateInput{
		BLNumber:        req.BLNumber,
		VesselName:      req.VesselName,
		ContainerNumber: req.ContainerNumber,
		ArrivalDate:     arrival,
		ServiceFee:      req.ServiceFee,
		ClientName:      req.ClientName,
		OriginCity:      req.OriginCity,
		OriginPort:      req.OriginPort,
		DestinationCity: req.DestinationCity,
		DestinationPort: req.DestinationPort,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": shipmentResponse(shipment)})
}

// ListShipments GET /api/shipments.
func (h *ShipmentsHandler) ListShipments(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	shipments, err := h.shipments.List(c.UserContext(), actor, parseShipmentQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.ShipmentResponse, 0, len(shipments))
	for i := range shipments {
		items = append(items, shipmentResponse(&shipments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetShipment GET /api/shipments/:id.
func (h *ShipmentsHandler) GetShipment(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	shipment, err := h.shipments.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": shipmentResponse(shipment)})
}

// UpdateShipment PATCH /api/shipments/:id.
func (h *ShipmentsHandler) UpdateShipment(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateShipmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	arrival, err := parseDate("arrival_date", req.ArrivalDate)
	if err != nil {
		return err
	}

	shipment, err := h.shipments.Update(c.UserContext(), actor, c.Params("id"), service.ShipmentUpdateInput{
		VesselName:      req.VesselName,
		ContainerNumber: req.ContainerNumber,
		ArrivalDate:     arrival,
		Status:          req.Status,
		ServiceFee:      req.ServiceFee,
		ClientName:      req.ClientName,
		OriginCity:      req.OriginCity,
		OriginPort:      req.OriginPort,
		DestinationCity: req.DestinationCity,
		DestinationPort: req.DestinationPort,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": shipmentResponse(shipment)})
}

// DeleteShipment DELETE /api/shipments/:id.
func (h *ShipmentsHandler) DeleteShipment(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.shipments.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AttachDocument POST /api/shipments/:id/documents.
func (h *ShipmentsHandler) AttachDocument(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	doc, err := h.documents.Attach(c.UserContext(), actor, c.Params("id"), service.DocumentCreateInput{
		DocumentType: req.DocumentType,
		FileURL:      req.FileURL,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": documentResponse(doc)})
}

// ListDocuments GET /api/shipments/:id/documents.
func (h *ShipmentsHandler) ListDocuments(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	docs, err := h.documents.List(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		items = append(items, documentResponse(&docs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// DeleteDocument DELETE /api/shipments/:id/documents/:documentId.
func (h *ShipmentsHandler) DeleteDocument(c *fiber.Ctx) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	if err := h.documents.Delete(c.UserContext(), actor, c.Params("id"), c.Params("documentId")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func parseShipmentQuery(c *fiber.Ctx) service.ShipmentListFilter {
	filter := service.ShipmentListFilter{Search: c.Query("q")}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter.Statuses = append(filter.Statuses, domain.ShipmentStatus(strings.ToUpper(part)))
			}
		}
	}
	filter.Page = parseInt(c.Query("page"), 1)
	filter.Limit = parseInt(c.Query("page_size"), 0)
	return filter
}
