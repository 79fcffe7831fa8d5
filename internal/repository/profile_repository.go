package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portkey-logistics/portkey/internal/domain"
)

// ProfileRepository persists the application-side mirror of auth users.
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	Upsert(ctx context.Context, profile *domain.Profile) error
	List(ctx context.Context, limit, offset int) ([]domain.Profile, error)
	UpdateRole(ctx context.Context, id string, role domain.ProfileRole) (*domain.Profile, error)
	Delete(ctx context.Context, id string) error
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a Postgres-backed implementation.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	const query = `
        SELECT id, email, full_name, role, avatar_url, created_at, updated_at
        FROM profiles WHERE id=$1`

	return scanProfile(r.pool.QueryRow(ctx, query, id))
}

// List returns profiles newest first.
func (r *profileRepository) List(ctx context.Context, limit, offset int) ([]domain.Profile, error) {
	const query = `
        SELECT id, email, full_name, role, avatar_url, created_at, updated_at
        FROM profiles
        ORDER BY created_at DESC, id
        LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	return profiles, rows.Err()
}

func (r *profileRepository) UpdateRole(ctx context.Context, id string, role domain.ProfileRole) (*domain.Profile, error) {
	const query = `
        UPDATE profiles SET role=$2, updated_at=NOW()
        WHERE id=$1
        RETURNING id, email, full_name, role, avatar_url, created_at, updated_at`

	return scanProfile(r.pool.QueryRow(ctx, query, id, role))
}

// Delete removes the profile; its shipments go with it through ON DELETE CASCADE.
func (r *profileRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM profiles WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var profile domain.Profile
	if err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.FullName,
		&profile.Role,
		&profile.AvatarURL,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert inserts the profile or refreshes its contact fields. The stored role
// of an existing row is never overwritten.
func (r *profileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	const query = `
        INSERT INTO profiles (id, email, full_name, role, avatar_url)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO UPDATE SET
            email=EXCLUDED.email,
            full_name=EXCLUDED.full_name,
            avatar_url=EXCLUDED.avatar_url,
            updated_at=NOW()
        RETURNING role, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		profile.ID,
		profile.Email,
		profile.FullName,
		profile.Role,
		profile.AvatarURL,
	).Scan(&profile.Role, &profile.CreatedAt, &profile.UpdatedAt)
}
