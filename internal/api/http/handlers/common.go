package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/portkey-logistics/portkey/internal/api/dto"
	"github.com/portkey-logistics/portkey/internal/auth"
	"github.com/portkey-logistics/portkey/internal/domain"
	"github.com/portkey-logistics/portkey/internal/service"
	apperrors "github.com/portkey-logistics/portkey/pkg/util"
)

const dateLayout = "2006-01-02"

func actorFrom(c *fiber.Ctx) (service.Actor, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Actor{UserID: principal.UserID(), Role: principal.Role()}, nil
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(field string, val *string) (*time.Time, error) {
	if val == nil || *val == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, *val); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, *val)
	if err != nil {
		return nil, apperrors.NewFieldError(field, "must be YYYY-MM-DD or RFC 3339")
	}
	return &t, nil
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func profileResponse(p *domain.Profile) dto.ProfileResponse {
	return dto.ProfileResponse{
		ID:        p.ID,
		Email:     p.Email,
		FullName:  p.FullName,
		Role:      p.Role,
		AvatarURL: p.AvatarURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func shipmentResponse(s *domain.Shipment) dto.ShipmentResponse {
	return dto.ShipmentResponse{
		ID:              s.ID,
		UserID:          s.UserID,
		BLNumber:        s.BLNumber,
		VesselName:      s.VesselName,
		ContainerNumber: s.ContainerNumber,
		ArrivalDate:     s.ArrivalDate,
		Status:          s.Status,
		ServiceFee:      s.ServiceFee,
		ClientName:      s.ClientName,
		OriginCity:      s.OriginCity,
		OriginPort:      s.OriginPort,
		DestinationCity: s.DestinationCity,
		DestinationPort: s.DestinationPort,
		CreatedAt:       s.CreatedAt,
	}
}

func documentResponse(d *domain.ShipmentDocument) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:           d.ID,
		ShipmentID:   d.ShipmentID,
		DocumentType: d.DocumentType,
		FileURL:      d.FileURL,
		CreatedAt:    d.CreatedAt,
	}
}
