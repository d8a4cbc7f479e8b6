package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/settleup/internal/models"
)

// CreateGroup persists a new group together with its members.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			"INSERT INTO groups (id, name, description, created_by, created_at) VALUES ($1, $2, $3, $4, $5)",
			group.ID, group.Name, group.Description, group.CreatedBy, group.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}
		return insertMembers(ctx, tx, group.ID, group.Members, 0)
	})
}

func insertMembers(ctx context.Context, tx pgx.Tx, groupID string, members []string, offset int) error {
	if len(members) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for i, userID := range members {
		batch.Queue(
			`INSERT INTO group_members (group_id, user_id, position) VALUES ($1, $2, $3)
			 ON CONFLICT (group_id, user_id) DO NOTHING`,
			groupID, userID, offset+i,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert members: %w", err)
	}
	return nil
}

// GetGroup retrieves a group with its members in join order.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, description, created_by, created_at,
		        COALESCE((SELECT array_agg(user_id ORDER BY position) FROM group_members WHERE group_id = g.id), '{}')
		 FROM groups g WHERE id = $1`,
		groupID,
	).Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt, &group.Members)
	if isNoRows(err) {
		return nil, notFound("group", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// ListGroupsForUser returns the groups userID belongs to, newest first.
func (s *Store) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT g.id, g.name, g.description, g.created_by, g.created_at,
		        COALESCE((SELECT array_agg(user_id ORDER BY position) FROM group_members WHERE group_id = g.id), '{}')
		 FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = $1
		 ORDER BY g.created_at DESC, g.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.Description, &group.CreatedBy, &group.CreatedAt, &group.Members); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// UpdateGroup replaces the group's name, description and member list.
func (s *Store) UpdateGroup(ctx context.Context, group *models.Group) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"UPDATE groups SET name = $1, description = $2 WHERE id = $3",
			group.Name, group.Description, group.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update group: %w", err)
		}
		if err := checkAffected(tag, "group", group.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM group_members WHERE group_id = $1", group.ID); err != nil {
			return fmt.Errorf("failed to clear members: %w", err)
		}
		return insertMembers(ctx, tx, group.ID, group.Members, 0)
	})
}

// DeleteGroup removes a group. Members, expenses and settlements cascade.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM groups WHERE id = $1", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return checkAffected(tag, "group", groupID)
}

// AddGroupMembers appends users to the group. Existing members are left as they are.
func (s *Store) AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		// Lock the group row so concurrent additions get distinct positions.
		var id string
		err := tx.QueryRow(ctx, "SELECT id FROM groups WHERE id = $1 FOR UPDATE", groupID).Scan(&id)
		if isNoRows(err) {
			return notFound("group", groupID)
		}
		if err != nil {
			return fmt.Errorf("failed to check group existence: %w", err)
		}

		var next int
		err = tx.QueryRow(ctx,
			"SELECT COALESCE(MAX(position), -1) + 1 FROM group_members WHERE group_id = $1",
			groupID,
		).Scan(&next)
		if err != nil {
			return fmt.Errorf("failed to read member position: %w", err)
		}
		return insertMembers(ctx, tx, groupID, userIDs, next)
	})
}

// RemoveGroupMember drops userID from the group.
func (s *Store) RemoveGroupMember(ctx context.Context, groupID, userID string) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM group_members WHERE group_id = $1 AND user_id = $2",
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return checkAffected(tag, "member", userID)
}
