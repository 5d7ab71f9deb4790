package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/arisanku/savings-engine/internal/domain"
)

type groupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Group, error) {
	query := `SELECT id, name, admin_id, created_at FROM groups WHERE id = $1`

	var group domain.Group
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) IsActiveMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (
		SELECT 1 FROM group_memberships
		WHERE group_id = $1 AND user_id = $2 AND status = 'active'
	)`

	var exists bool
	if err := sqlx.GetContext(ctx, queryer(ctx, r.db), &exists, query, groupID, userID); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *groupRepository) ListActiveMemberIDs(ctx context.Context, groupID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT user_id FROM group_memberships
		WHERE group_id = $1 AND status = 'active'
		ORDER BY joined_at`

	var ids []uuid.UUID
	if err := sqlx.SelectContext(ctx, queryer(ctx, r.db), &ids, query, groupID); err != nil {
		return nil, err
	}
	return ids, nil
}
