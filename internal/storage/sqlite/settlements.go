package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

const settlementColumns = `id, group_id, expense_id, from_user_id, to_user_id, amount, note,
	status, created_by, created_at, settled_at`

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var expenseID, note sql.NullString
	err := row.Scan(&settlement.ID, &settlement.GroupID, &expenseID, &settlement.FromUserID, &settlement.ToUserID,
		&settlement.Amount, &note, &settlement.Status, &settlement.CreatedBy, &settlement.CreatedAt, &settlement.SettledAt)
	if err != nil {
		return nil, err
	}
	settlement.ExpenseID = expenseID.String
	settlement.Note = note.String
	return settlement, nil
}

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.SettledAt == 0 {
		settlement.SettledAt = settlement.CreatedAt
	}
	if settlement.Status == "" {
		settlement.Status = models.SettlementCompleted
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (`+settlementColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.GroupID, nullable(settlement.ExpenseID), settlement.FromUserID, settlement.ToUserID,
		settlement.Amount, nullable(settlement.Note), settlement.Status, settlement.CreatedBy,
		settlement.CreatedAt, settlement.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+settlementColumns+" FROM settlements WHERE id = ?", settlementID)
	settlement, err := scanSettlement(row)
	if isNoRows(err) {
		return nil, notFound("settlement", settlementID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ListSettlements returns the settlements matching filter, newest first.
func (s *SQLiteStore) ListSettlements(ctx context.Context, filter storage.SettlementFilter) ([]*models.Settlement, error) {
	var conds []string
	var args []any
	add := func(cond string, vals ...any) {
		conds = append(conds, cond)
		args = append(args, vals...)
	}
	if filter.GroupID != "" {
		add("group_id = ?", filter.GroupID)
	}
	if filter.ExpenseID != "" {
		add("expense_id = ?", filter.ExpenseID)
	}
	if filter.FromUserID != "" {
		add("from_user_id = ?", filter.FromUserID)
	}
	if filter.ToUserID != "" {
		add("to_user_id = ?", filter.ToUserID)
	}
	if filter.UserID != "" {
		add("(from_user_id = ? OR to_user_id = ?)", filter.UserID, filter.UserID)
	}
	if filter.Status != "" {
		add("status = ?", filter.Status)
	}

	query := "SELECT " + settlementColumns + " FROM settlements"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}
