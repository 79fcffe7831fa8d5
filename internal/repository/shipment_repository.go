package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portkey-logistics/portkey/internal/domain"
)

// ShipmentFilter narrows shipment listings.
type ShipmentFilter struct {
	UserID   *string
	Search   *string
	Statuses []domain.ShipmentStatus
	Limit    int
	Offset   int
}

// ShipmentRepository encapsulates shipment persistence.
type ShipmentRepository interface {
	Create(ctx context.Context, shipment *domain.Shipment) error
	Update(ctx context.Context, shipment *domain.Shipment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Shipment, error)
	List(ctx context.Context, filter ShipmentFilter) ([]domain.Shipment, error)
	Metrics(ctx context.Context, userID *string) (*domain.DashboardMetrics, error)
}

type shipmentRepository struct {
	pool *pgxpool.Pool
}

// NewShipmentRepository instantiates repository.
func NewShipmentRepository(pool *pgxpool.Pool) ShipmentRepository {
	return &shipmentRepository{pool: pool}
}

const shipmentColumns = `id, user_id, bl_number, vessel_name, container_number, arrival_date, status,
               service_fee, client_name, origin_city, origin_port, destination_city, destination_port, created_at`

func (r *shipmentRepository) Create(ctx context.Context, shipment *domain.Shipment) error {
	const query = `
        INSERT INTO shipments (user_id, bl_number, vessel_name, container_number, arrival_date, status,
            service_fee, client_name, origin_city, origin_port, destination_city, destination_port)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		shipment.UserID,
		shipment.BLNumber,
		shipment.VesselName,
		shipment.ContainerNumber,
		shipment.ArrivalDate,
		shipment.Status,
		shipment.ServiceFee,
		shipment.ClientName,
		shipment.OriginCity,
		shipment.OriginPort,
		shipment.DestinationCity,
		shipment.DestinationPort,
	).Scan(&shipment.ID, &shipment.CreatedAt)
}

func (r *shipmentRepository) Update(ctx context.Context, shipment *domain.Shipment) error {
	const query = `
        UPDATE shipments SET vessel_name=$1, container_number=$2, arrival_date=$3, status=$4,
            service_fee=$5, client_name=$6, origin_city=$7, origin_port=$8,
            destination_city=$9, destination_port=$10
        WHERE id=$11`
	cmd, err := r.pool.Exec(ctx, query,
		shipment.VesselName,
		shipment.ContainerNumber,
		shipment.ArrivalDate,
		shipment.Status,
		shipment.ServiceFee,
		shipment.ClientName,
		shipment.OriginCity,
		shipment.OriginPort,
		shipment.DestinationCity,
		shipment.DestinationPort,
		shipment.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *shipmentRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM shipments WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *shipmentRepository) GetByID(ctx context.Context, id string) (*domain.Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments WHERE id=$1`
	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shipments, err := scanShipments(rows)
	if err != nil {
		return nil, err
	}
	if len(shipments) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &shipments[0], nil
}

func (r *shipmentRepository) List(ctx context.Context, filter ShipmentFilter) ([]domain.Shipment, error) {
	where, args := filter.where()

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM shipments WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		shipmentColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanShipments(rows)
}

// Metrics aggregates shipments owned by userID, or all of them when userID is
// nil. The status buckets, KPI counters and daily revenue go out as one batch.
func (r *shipmentRepository) Metrics(ctx context.Context, userID *string) (*domain.DashboardMetrics, error) {
	filter := ShipmentFilter{UserID: userID}
	where, args := filter.where()

	batch := &pgx.Batch{}
	batch.Queue(fmt.Sprintf(`
        SELECT status, COUNT(*), COALESCE(SUM(service_fee), 0)
        FROM shipments WHERE %s GROUP BY status`, where), args...)
	batch.Queue(fmt.Sprintf(`
        SELECT
            COUNT(*) FILTER (WHERE status <> '%s' AND created_at < NOW() - INTERVAL '%d days'),
            COUNT(DISTINCT NULLIF(TRIM(client_name), ''))
        FROM shipments WHERE %s`, domain.ShipmentStatusDelivered, delayedAfterDays, where), args...)
	batch.Queue(fmt.Sprintf(`
        SELECT TO_CHAR(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COALESCE(SUM(service_fee), 0)
        FROM shipments WHERE %s GROUP BY day ORDER BY day`, where), args...)

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	metrics := domain.NewDashboardMetrics()

	rows, err := results.Query()
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var (
			status  domain.ShipmentStatus
			count   int64
			revenue float64
		)
		if err := rows.Scan(&status, &count, &revenue); err != nil {
			rows.Close()
			return nil, err
		}
		metrics.Add(status, count, revenue)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := results.QueryRow().Scan(&metrics.Delayed, &metrics.UniqueClients); err != nil {
		return nil, err
	}

	rows, err = results.Query()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			day     string
			revenue float64
		)
		if err := rows.Scan(&day, &revenue); err != nil {
			return nil, err
		}
		metrics.AddDailyRevenue(day, revenue)
	}
	return metrics, rows.Err()
}

var delayedAfterDays = int(domain.DelayedAfter.Hours() / 24)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (f ShipmentFilter) where() (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if f.UserID != nil {
		args = append(args, *f.UserID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if len(f.Statuses) > 0 {
		placeholders := make([]string, len(f.Statuses))
		for i, status := range f.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if f.Search != nil && strings.TrimSpace(*f.Search) != "" {
		// % and _ in the term match literally.
		search := "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(*f.Search))) + "%"
		args = append(args, search)
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			`(LOWER(bl_number) LIKE %[1]s ESCAPE '\' OR LOWER(COALESCE(vessel_name,'')) LIKE %[1]s ESCAPE '\' `+
				`OR LOWER(COALESCE(container_number,'')) LIKE %[1]s ESCAPE '\' OR LOWER(COALESCE(client_name,'')) LIKE %[1]s ESCAPE '\')`, p))
	}
	return strings.Join(clauses, " AND "), args
}

func scanShipments(rows pgx.Rows) ([]domain.Shipment, error) {
	var result []domain.Shipment
	for rows.Next() {
		var s domain.Shipment
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.BLNumber,
			&s.VesselName,
			&s.ContainerNumber,
			&s.ArrivalDate,
			&s.Status,
			&s.ServiceFee,
			&s.ClientName,
			&s.OriginCity,
			&s.OriginPort,
			&s.DestinationCity,
			&s.DestinationPort,
			&s.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
