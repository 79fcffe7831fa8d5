package dto

import (
	"time"

	"github.com/portkey-logistics/portkey/internal/domain"
)

// CreateShipmentRequest payload.
type CreateShipmentRequest struct {
	BLNumber        string  `json:"bl_number"`
	VesselName      *string `json:"vessel_name"`
	ContainerNumber *string `json:"container_number"`
	ArrivalDate     *string `json:"arrival_date"`
	ServiceFee      float64 `json:"service_fee"`
	ClientName      *string `json:"client_name"`
	OriginCity      *string `json:"origin_city"`
	OriginPort      *string `json:"origin_port"`
	DestinationCity *string `json:"destination_city"`
	DestinationPort *string `json:"destination_port"`
}

// UpdateShipmentRequest payload; absent fields are left unchanged.
type UpdateShipmentRequest struct {
	VesselName      *string                `json:"vessel_name"`
	ContainerNumber *string                `json:"container_number"`
	ArrivalDate     *string                `json:"arrival_date"`
	Status          *domain.ShipmentStatus `json:"status"`
	ServiceFee      *float64               `json:"service_fee"`
	ClientName      *string                `json:"client_name"`
	OriginCity      *string                `json:"origin_city"`
	OriginPort      *string                `json:"origin_port"`
	DestinationCity *string                `json:"destination_city"`
	DestinationPort *string                `json:"destination_port"`
}

// ShipmentResponse response.
type ShipmentResponse struct {
	ID              string                `json:"id"`
	UserID          string                `json:"user_id"`
	BLNumber        string                `json:"bl_number"`
	VesselName      *string               `json:"vessel_name"`
	ContainerNumber *string               `json:"container_number"`
	ArrivalDate     *time.Time            `json:"arrival_date"`
	Status          domain.ShipmentStatus `json:"status"`
	ServiceFee      float64               `json:"service_fee"`
	ClientName      *string               `json:"client_name"`
	OriginCity      *string               `json:"origin_city"`
	OriginPort      *string               `json:"origin_port"`
	DestinationCity *string               `json:"destination_city"`
	DestinationPort *string               `json:"destination_port"`
	CreatedAt       time.Time             `json:"created_at"`
}

// CreateDocumentRequest payload.
type CreateDocumentRequest struct {
	DocumentType string `json:"document_type"`
	FileURL      string `json:"file_url"`
}

// DocumentResponse response.
type DocumentResponse struct {
	ID           string    `json:"id"`
	ShipmentID   string    `json:"shipment_id"`
	DocumentType string    `json:"document_type"`
	FileURL      string    `json:"file_url"`
	CreatedAt    time.Time `json:"created_at"`
}
