package domain

import "time"

// ShipmentDocument is a file (invoice, packing list) attached to a shipment.
type ShipmentDocument struct {
	ID           string
	ShipmentID   string
	DocumentType string
	FileURL      string
	CreatedAt    time.Time
}
