package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/portkey-logistics/portkey/internal/domain"
	"github.com/portkey-logistics/portkey/internal/events"
	"github.com/portkey-logistics/portkey/internal/repository"
	apperrors "github.com/portkey-logistics/portkey/pkg/util"
)

const maxDocumentTypeLen = 50

// DocumentService manages files attached to shipments.
type DocumentService struct {
	documents  repository.DocumentRepository
	shipments  *ShipmentService
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// DocumentCreateInput describes an uploaded file reference.
type DocumentCreateInput struct {
	DocumentType string
	FileURL      string
}

// NewDocumentService constructs the service.
func NewDocumentService(documents repository.DocumentRepository, shipments *ShipmentService, dispatcher events.Dispatcher, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{documents: documents, shipments: shipments, dispatcher: dispatcher, logger: logger}
}

// Attach records a document on a shipment the actor can see.
func (s *DocumentService) Attach(ctx context.Context, actor Actor, shipmentID string, input DocumentCreateInput) (*domain.ShipmentDocument, error) {
	shipment, err := s.shipments.Get(ctx, actor, shipmentID)
	if err != nil {
		return nil, err
	}

	docType := strings.TrimSpace(input.DocumentType)
	if docType == "" {
		return nil, apperrors.NewFieldError("document_type", "is required")
	}
	if len(docType) > maxDocumentTypeLen {
		return nil, apperrors.NewFieldError("document_type", "must be at most 50 characters")
	}
	fileURL := strings.TrimSpace(input.FileURL)
	if u, err := url.Parse(fileURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperrors.NewFieldError("file_url", "must be an absolute http(s) URL")
	}

	doc := &domain.ShipmentDocument{
		ShipmentID:   shipment.ID,
		DocumentType: docType,
		FileURL:      fileURL,
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:       events.EventDocumentAttached,
		ShipmentID: shipment.ID,
		OwnerID:    shipment.UserID,
		ActorID:    actor.UserID,
		Payload:    events.DocumentAttachedPayload{DocumentID: doc.ID, DocumentType: doc.DocumentType},
	})
	return doc, nil
}

// List returns a shipment's documents, newest first.
func (s *DocumentService) List(ctx context.Context, actor Actor, shipmentID string) ([]domain.ShipmentDocument, error) {
	shipment, err := s.shipments.Get(ctx, actor, shipmentID)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByShipment(ctx, shipment.ID)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []domain.ShipmentDocument{}
	}
	return docs, nil
}

// Delete removes one document from a shipment.
func (s *DocumentService) Delete(ctx context.Context, actor Actor, shipmentID, documentID string) error {
	shipment, err := s.shipments.Get(ctx, actor, shipmentID)
	if err != nil {
		return err
	}
	notFound := apperrors.NewNotFound("document", map[string]any{"id": documentID})
	if _, err := uuid.Parse(documentID); err != nil {
		return notFound
	}
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return notFound
		}
		return err
	}
	if doc.ShipmentID != shipment.ID {
		return notFound
	}
	return s.documents.Delete(ctx, doc.ID)
}
