package domain

import "time"

// ShipmentStatus enumerates the customs lifecycle of a consignment.
type ShipmentStatus string

const (
	ShipmentStatusPending     ShipmentStatus = "PENDING"
	ShipmentStatusInTransit   ShipmentStatus = "IN_TRANSIT"
	ShipmentStatusArrived     ShipmentStatus = "ARRIVED"
	ShipmentStatusCustomsHold ShipmentStatus = "CUSTOMS_HOLD"
	ShipmentStatusReleased    ShipmentStatus = "RELEASED"
	ShipmentStatusDelivered   ShipmentStatus = "DELIVERED"
)

// ShipmentStatuses lists every status in lifecycle order.
var ShipmentStatuses = []ShipmentStatus{
	ShipmentStatusPending,
	ShipmentStatusInTransit,
	ShipmentStatusArrived,
	ShipmentStatusCustomsHold,
	ShipmentStatusReleased,
	ShipmentStatusDelivered,
}

// Valid reports whether s is a known status.
func (s ShipmentStatus) Valid() bool {
	for _, known := range ShipmentStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Shipment is a cargo consignment tracked by bill of lading.
type Shipment struct {
	ID              string
	UserID          string
	BLNumber        string
	VesselName      *string
	ContainerNumber *string
	ArrivalDate     *time.Time
	Status          ShipmentStatus
	ServiceFee      float64
	ClientName      *string
	OriginCity      *string
	OriginPort      *string
	DestinationCity *string
	DestinationPort *string
	CreatedAt       time.Time
}

// DelayedAfter is how long a shipment may stay undelivered before the admin
// dashboard reports it as delayed.
const DelayedAfter = 30 * 24 * time.Hour

// Delayed reports whether s is still undelivered DelayedAfter past creation.
func (s *Shipment) Delayed(now time.Time) bool {
	return s.Status != ShipmentStatusDelivered && s.CreatedAt.Before(now.Add(-DelayedAfter))
}
