package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/chama-dev/chama/backend/internal/domain"
)

const identityColumns = `id, group_id, name, email, role, total_contributions, last_contribution_at, created_at, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner, extra ...any) (*domain.Identity, error) {
	identity := &domain.Identity{}

	var (
		role  string
		total sql.NullFloat64
		last  sql.NullTime
	)
	dst := []any{&identity.ID, &identity.GroupID, &identity.Name, &identity.Email, &role, &total, &last, &identity.CreatedAt, &identity.Version}
	dst = append(dst, extra...)
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}

	parsed, err := domain.ParseRole(role)
	if err != nil {
		return nil, err
	}
	identity.Role = parsed

	if total.Valid {
		identity.TotalContributions = &total.Float64
	}
	if last.Valid {
		t := last.Time
		identity.LastContributionAt = &t
	}

	return identity, nil
}

func (r *Repository) GetIdentityByID(ctx context.Context, id string) (*domain.Identity, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`
	return scanIdentity(r.dbpool.QueryRowContext(ctx, query, id))
}

// GetIdentityByEmail returns the identity together with its password hash.
func (r *Repository) GetIdentityByEmail(ctx context.Context, email string) (*domain.Identity, string, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + identityColumns + `, password_hash FROM identities WHERE lower(email) = lower($1)`

	var passwordHash string
	identity, err := scanIdentity(r.dbpool.QueryRowContext(ctx, query, email), &passwordHash)
	if err != nil {
		return nil, "", err
	}

	return identity, passwordHash, nil
}

func (r *Repository) GetIdentitiesByGroupID(ctx context.Context, groupID string) ([]*domain.Identity, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + identityColumns + ` FROM identities WHERE group_id = $1 ORDER BY created_at, id`

	rows, err := r.dbpool.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	identities := make([]*domain.Identity, 0)
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return identities, nil
}

// UpdateIdentity saves the editable fields. It returns sql.ErrNoRows when
// the row changed since it was read.
func (r *Repository) UpdateIdentity(ctx context.Context, identity *domain.Identity) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE identities
		SET
			name = $1,
			email = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	args := []any{identity.Name, identity.Email, identity.ID, identity.Version}
	return r.dbpool.QueryRowContext(ctx, query, args...).Scan(&identity.Version)
}

// CheckEmailIfExists looks at identities and at officer slots still waiting
// for activation.
func (r *Repository) CheckEmailIfExists(ctx context.Context, email string) (bool, error) {
	isExists := false

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT
			EXISTS (SELECT 1 FROM identities WHERE lower(email) = lower($1))
			OR EXISTS (SELECT 1 FROM officer_slots WHERE lower(email) = lower($1) AND status = $2)
	`
	if err := r.dbpool.QueryRowContext(ctx, query, email, domain.SlotPendingActivation).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}

// RecordContribution adds amount to the identity's running total.
func (r *Repository) RecordContribution(ctx context.Context, identityID string, amount float64, at time.Time) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		UPDATE identities
		SET
			total_contributions = COALESCE(total_contributions, 0) + $1,
			last_contribution_at = $2,
			version = version + 1
		WHERE id = $3
	`

	res, err := r.dbpool.ExecContext(ctx, query, amount, at, identityID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}

	return nil
}
