package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

const settlementColumns = `id, group_id, expense_id, from_user_id, to_user_id, amount::text, note,
	status, created_by, created_at, settled_at`

func scanSettlement(row pgx.Row) (*models.Settlement, error) {
	s := &models.Settlement{}
	var expenseID, note *string
	var amount, status string
	err := row.Scan(&s.ID, &s.GroupID, &expenseID, &s.FromUserID, &s.ToUserID, &amount, &note,
		&status, &s.CreatedBy, &s.CreatedAt, &s.SettledAt)
	if err != nil {
		return nil, err
	}
	if s.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	s.ExpenseID = text(expenseID)
	s.Note = text(note)
	s.Status = models.SettlementStatus(status)
	return s, nil
}

// CreateSettlement persists a new settlement.
func (s *Store) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
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

	_, err := s.pool.Exec(ctx,
		`INSERT INTO settlements (id, group_id, expense_id, from_user_id, to_user_id, amount, note,
		 status, created_by, created_at, settled_at)
		 VALUES ($1, $2, $3, $4, $5, $6::numeric, $7, $8, $9, $10, $11)`,
		settlement.ID, settlement.GroupID, nullable(settlement.ExpenseID), settlement.FromUserID, settlement.ToUserID,
		settlement.Amount.String(), nullable(settlement.Note), string(settlement.Status), settlement.CreatedBy,
		settlement.CreatedAt, settlement.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *Store) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement, err := scanSettlement(s.pool.QueryRow(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE id = $1", settlementID))
	if isNoRows(err) {
		return nil, notFound("settlement", settlementID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return settlement, nil
}

// ListSettlements returns the settlements matching filter, newest first.
func (s *Store) ListSettlements(ctx context.Context, filter storage.SettlementFilter) ([]*models.Settlement, error) {
	var conds []string
	args := pgx.NamedArgs{}
	add := func(cond, name string, val any) {
		conds = append(conds, cond)
		args[name] = val
	}
	if filter.GroupID != "" {
		add("group_id = @group_id", "group_id", filter.GroupID)
	}
	if filter.ExpenseID != "" {
		add("expense_id = @expense_id", "expense_id", filter.ExpenseID)
	}
	if filter.FromUserID != "" {
		add("from_user_id = @from_user_id", "from_user_id", filter.FromUserID)
	}
	if filter.ToUserID != "" {
		add("to_user_id = @to_user_id", "to_user_id", filter.ToUserID)
	}
	if filter.UserID != "" {
		add("(from_user_id = @user_id OR to_user_id = @user_id)", "user_id", filter.UserID)
	}
	if filter.Status != "" {
		add("status = @status", "status", string(filter.Status))
	}

	query := "SELECT " + settlementColumns + " FROM settlements"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.pool.Query(ctx, query, args)
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
