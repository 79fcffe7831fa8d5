package events

import (
	"time"

	"github.com/portkey-logistics/portkey/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventShipmentCreated       EventType = "shipment_created"
	EventShipmentStatusChanged EventType = "shipment_status_changed"
	EventShipmentDeleted       EventType = "shipment_deleted"
	EventDocumentAttached      EventType = "document_attached"
	EventProfileRoleChanged    EventType = "profile_role_changed"
	EventProfileDeleted        EventType = "profile_deleted"
)

// Payload is implemented by every event body.
type Payload interface {
	EventType() EventType
}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	ShipmentID string    `json:"shipment_id"`
	OwnerID    string    `json:"owner_id"`
	ActorID    string    `json:"actor_id"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    Payload   `json:"payload"`
}

// ShipmentCreatedPayload payload.
type ShipmentCreatedPayload struct {
	BLNumber   string                `json:"bl_number"`
	Status     domain.ShipmentStatus `json:"status"`
	ServiceFee float64               `json:"service_fee"`
}

func (ShipmentCreatedPayload) EventType() EventType { return EventShipmentCreated }

// ShipmentStatusChangedPayload payload.
type ShipmentStatusChangedPayload struct {
	OldStatus domain.ShipmentStatus `json:"old_status"`
	NewStatus domain.ShipmentStatus `json:"new_status"`
}

func (ShipmentStatusChangedPayload) EventType() EventType { return EventShipmentStatusChanged }

// ShipmentDeletedPayload payload.
type ShipmentDeletedPayload struct {
	BLNumber string `json:"bl_number"`
}

func (ShipmentDeletedPayload) EventType() EventType { return EventShipmentDeleted }

// DocumentAttachedPayload payload.
type DocumentAttachedPayload struct {
	DocumentID   string `json:"document_id"`
	DocumentType string `json:"document_type"`
}

func (DocumentAttachedPayload) EventType() EventType { return EventDocumentAttached }

// ProfileRoleChangedPayload payload. The event's OwnerID is the profile id.
type ProfileRoleChangedPayload struct {
	OldRole domain.ProfileRole `json:"old_role"`
	NewRole domain.ProfileRole `json:"new_role"`
}

func (ProfileRoleChangedPayload) EventType() EventType { return EventProfileRoleChanged }

// ProfileDeletedPayload payload. Shipments owned by the profile are deleted with it.
type ProfileDeletedPayload struct {
	Email string `json:"email"`
}

func (ProfileDeletedPayload) EventType() EventType { return EventProfileDeleted }
