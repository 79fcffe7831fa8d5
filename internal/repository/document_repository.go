package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portkey-logistics/portkey/internal/domain"
)

// DocumentRepository persists files attached to shipments.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.ShipmentDocument) error
	GetByID(ctx context.Context, id string) (*domain.ShipmentDocument, error)
	ListByShipment(ctx context.Context, shipmentID string) ([]domain.ShipmentDocument, error)
	Delete(ctx context.Context, id string) error
}

type documentRepository struct {
	pool *pgxpool.Pool
}

// NewDocumentRepository constructs repository.
func NewDocumentRepository(pool *pgxpool.Pool) DocumentRepository {
	return &documentRepository{pool: pool}
}

func (r *documentRepository) Create(ctx context.Context, doc *domain.ShipmentDocument) error {
	const query = `
        INSERT INTO shipment_documents (shipment_id, document_type, file_url)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		doc.ShipmentID,
		doc.DocumentType,
		doc.FileURL,
	).Scan(&doc.ID, &doc.CreatedAt)
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*domain.ShipmentDocument, error) {
	const query = `
        SELECT id, shipment_id, document_type, file_url, created_at
        FROM shipment_documents WHERE id=$1`
	var doc domain.ShipmentDocument
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.ShipmentID,
		&doc.DocumentType,
		&doc.FileURL,
		&doc.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) ListByShipment(ctx context.Context, shipmentID string) ([]domain.ShipmentDocument, error) {
	const query = `
        SELECT id, shipment_id, document_type, file_url, created_at
        FROM shipment_documents WHERE shipment_id=$1
        ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ShipmentDocument
	for rows.Next() {
		var doc domain.ShipmentDocument
		if err := rows.Scan(
			&doc.ID,
			&doc.ShipmentID,
			&doc.DocumentType,
			&doc.FileURL,
			&doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	return result, rows.Err()
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM shipment_documents WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
