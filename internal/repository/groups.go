package repository

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/chama-dev/chama/backend/internal/domain"
)

// SaveRegistration writes the group, its chairman and both officer slots in
// one transaction. Nothing is written if any statement fails.
func (r *Repository) SaveRegistration(ctx context.Context, group *domain.Group, chairmanSecret string) error {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(chairmanSecret), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO groups (id, name, email, account_no, document_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	args := []any{group.ID, group.Name, group.Email, group.AccountNo, group.DocumentID, group.CreatedAt}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	chairman := &group.Chairman
	query = `
		INSERT INTO identities (id, group_id, name, email, password_hash, role, total_contributions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING version
	`
	args = []any{chairman.ID, group.ID, chairman.Name, chairman.Email, string(passwordHash), chairman.Role, chairman.TotalContributions, chairman.CreatedAt}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&chairman.Version); err != nil {
		return err
	}

	for _, slot := range []domain.OfficerSlot{group.Secretary, group.Treasurer} {
		query = `
			INSERT INTO officer_slots (group_id, role, name, email, status)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.ExecContext(ctx, query, group.ID, slot.Role, slot.Name, slot.Email, slot.Status); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) GetGroupByID(ctx context.Context, id string) (*domain.Group, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT name, email, account_no, document_id, created_at
		FROM groups WHERE id = $1
	`

	group := &domain.Group{ID: id}
	dst := []any{&group.Name, &group.Email, &group.AccountNo, &group.DocumentID, &group.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	query = `
		SELECT ` + identityColumns + `
		FROM identities WHERE group_id = $1 AND role = $2
	`
	chairman, err := scanIdentity(r.dbpool.QueryRowContext(ctx, query, id, domain.RoleChairman))
	if err != nil {
		return nil, err
	}
	group.Chairman = *chairman

	query = `
		SELECT role, name, email, status FROM officer_slots WHERE group_id = $1
	`
	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		slot := domain.OfficerSlot{}
		if err := rows.Scan(&slot.Role, &slot.Name, &slot.Email, &slot.Status); err != nil {
			return nil, err
		}
		switch slot.Role {
		case domain.RoleSecretary:
			group.Secretary = slot
		case domain.RoleTreasurer:
			group.Treasurer = slot
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return group, nil
}
