package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/portkey-logistics/portkey/internal/domain"
	"github.com/portkey-logistics/portkey/internal/events"
	"github.com/portkey-logistics/portkey/internal/repository"
	apperrors "github.com/portkey-logistics/portkey/pkg/util"
)

const (
	maxBLNumberLen    = 50
	maxVesselNameLen  = 150
	maxContainerLen   = 50
	defaultListLimit  = 20
	maxListLimit      = 100
	blNumberFieldName = "bl_number"
)

// ShipmentService coordinates shipment workflows.
type ShipmentService struct {
	shipments  repository.ShipmentRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// ShipmentCreateInput describes a new consignment.
type ShipmentCreateInput struct {
	BLNumber        string
	VesselName      *string
	ContainerNumber *string
	ArrivalDate     *time.Time
	ServiceFee      float64
	ClientName      *string
	OriginCity      *string
	OriginPort      *string
	DestinationCity *string
	DestinationPort *string
}

// ShipmentUpdateInput is a partial update; nil fields are left untouched.
type ShipmentUpdateInput struct {
	VesselName      *string
	ContainerNumber *string
	ArrivalDate     *time.Time
	Status          *domain.ShipmentStatus
	ServiceFee      *float64
	ClientName      *string
	OriginCity      *string
	OriginPort      *string
	DestinationCity *string
	DestinationPort *string
}

// ShipmentListFilter describes listing filters.
type ShipmentListFilter struct {
	Search   string
	Statuses []domain.ShipmentStatus
	Limit    int
	// Page is 1-based. When set it wins over Offset, and the offset is taken
	// from the clamped limit so pages never skip rows.
	Page   int
	Offset int
}

// NewShipmentService constructs the service.
func NewShipmentService(shipments repository.ShipmentRepository, dispatcher events.Dispatcher, logger *zap.Logger) *ShipmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShipmentService{shipments: shipments, dispatcher: dispatcher, logger: logger}
}

// Create registers a shipment owned by the actor. New shipments start PENDING.
func (s *ShipmentService) Create(ctx context.Context, actor Actor, input ShipmentCreateInput) (*domain.Shipment, error) {
	bl := strings.ToUpper(strings.TrimSpace(input.BLNumber))
	if bl == "" {
		return nil, apperrors.NewFieldError(blNumberFieldName, "is required")
	}
	if utf8.RuneCountInString(bl) > maxBLNumberLen {
		return nil, apperrors.NewFieldError(blNumberFieldName, "must be at most 50 characters")
	}

	shipment := &domain.Shipment{
		UserID:          actor.UserID,
		BLNumber:        bl,
		VesselName:      trimmed(input.VesselName),
		ContainerNumber: trimmed(input.ContainerNumber),
		ArrivalDate:     input.ArrivalDate,
		Status:          domain.ShipmentStatusPending,
		ServiceFee:      input.ServiceFee,
		ClientName:      trimmed(input.ClientName),
		OriginCity:      trimmed(input.OriginCity),
		OriginPort:      trimmed(input.OriginPort),
		DestinationCity: trimmed(input.DestinationCity),
		DestinationPort: trimmed(input.DestinationPort),
	}
	if err := validateShipment(shipment); err != nil {
		return nil, err
	}

	if err := s.shipments.Create(ctx, shipment); err != nil {
		switch de := apperrors.ToDomainError(err); {
		case de.Kind == apperrors.KindConflict:
			return nil, apperrors.NewConflict("bill of lading already registered", map[string]any{"bl_number": bl})
		case de.Code == apperrors.CodeReferenceMissing:
			return nil, apperrors.NewReferenceError("profile not synced; call POST /api/users/sync first",
				map[string]any{"user_id": actor.UserID})
		}
		return nil, err
	}

	s.publishEvent(ctx, actor, shipment, events.ShipmentCreatedPayload{
		BLNumber:   shipment.BLNumber,
		Status:     shipment.Status,
		ServiceFee: shipment.ServiceFee,
	})
	return shipment, nil
}

// List returns the shipments visible to the actor, newest first.
func (s *ShipmentService) List(ctx context.Context, actor Actor, filter ShipmentListFilter) ([]domain.Shipment, error) {
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, apperrors.NewFieldError("status", "unknown status "+string(status))
		}
	}

	limit := filter.Limit
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	offset := filter.Offset
	if filter.Page > 0 {
		offset = (filter.Page - 1) * limit
	}
	if offset < 0 {
		offset = 0
	}

	repoFilter := repository.ShipmentFilter{
		UserID:   actor.scope(),
		Statuses: filter.Statuses,
		Limit:    limit,
		Offset:   offset,
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		repoFilter.Search = &search
	}
	shipments, err := s.shipments.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}
	if shipments == nil {
		shipments = []domain.Shipment{}
	}
	return shipments, nil
}

// Get returns one shipment. Shipments the actor may not see are reported as missing.
func (s *ShipmentService) Get(ctx context.Context, actor Actor, id string) (*domain.Shipment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("shipment", map[string]any{"id": id})
	}
	shipment, err := s.shipments.GetByID(ctx, id)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, apperrors.NewNotFound("shipment", map[string]any{"id": id})
		}
		return nil, err
	}
	if !actor.owns(shipment) {
		return nil, apperrors.NewNotFound("shipment", map[string]any{"id": id})
	}
	return shipment, nil
}

// Update applies a partial update. Identity fields and the bill of lading are immutable.
func (s *ShipmentService) Update(ctx context.Context, actor Actor, id string, input ShipmentUpdateInput) (*domain.Shipment, error) {
	shipment, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	oldStatus := shipment.Status

	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, apperrors.NewFieldError("status", "unknown status "+string(*input.Status))
		}
		shipment.Status = *input.Status
	}
	if input.VesselName != nil {
		shipment.VesselName = trimmed(input.VesselName)
	}
	if input.ContainerNumber != nil {
		shipment.ContainerNumber = trimmed(input.ContainerNumber)
	}
	if input.ArrivalDate != nil {
		shipment.ArrivalDate = input.ArrivalDate
	}
	if input.ServiceFee != nil {
		shipment.ServiceFee = *input.ServiceFee
	}
	if input.ClientName != nil {
		shipment.ClientName = trimmed(input.ClientName)
	}
	if input.OriginCity != nil {
		shipment.OriginCity = trimmed(input.OriginCity)
	}
	if input.OriginPort != nil {
		shipment.OriginPort = trimmed(input.OriginPort)
	}
	if input.DestinationCity != nil {
		shipment.DestinationCity = trimmed(input.DestinationCity)
	}
	if input.DestinationPort != nil {
		shipment.DestinationPort = trimmed(input.DestinationPort)
	}
	if err := validateShipment(shipment); err != nil {
		return nil, err
	}

	if err := s.shipments.Update(ctx, shipment); err != nil {
		return nil, err
	}

	if shipment.Status != oldStatus {
		s.publishEvent(ctx, actor, shipment, events.ShipmentStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: shipment.Status,
		})
	}
	return shipment, nil
}

// Delete removes a shipment together with its documents.
func (s *ShipmentService) Delete(ctx context.Context, actor Actor, id string) error {
	shipment, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.shipments.Delete(ctx, shipment.ID); err != nil {
		return err
	}
	s.publishEvent(ctx, actor, shipment, events.ShipmentDeletedPayload{BLNumber: shipment.BLNumber})
	return nil
}

func validateShipment(s *domain.Shipment) error {
	if s.VesselName != nil && utf8.RuneCountInString(*s.VesselName) > maxVesselNameLen {
		return apperrors.NewFieldError("vessel_name", "must be at most 150 characters")
	}
	if s.ContainerNumber != nil && utf8.RuneCountInString(*s.ContainerNumber) > maxContainerLen {
		return apperrors.NewFieldError("container_number", "must be at most 50 characters")
	}
	if s.ServiceFee < 0 {
		return apperrors.NewFieldError("service_fee", "must not be negative")
	}
	return nil
}

func (s *ShipmentService) publishEvent(ctx context.Context, actor Actor, shipment *domain.Shipment, payload events.Payload) {
	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:       payload.EventType(),
		ShipmentID: shipment.ID,
		OwnerID:    shipment.UserID,
		ActorID:    actor.UserID,
		Payload:    payload,
	})
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}

// trimmed returns nil for blank strings.
func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
