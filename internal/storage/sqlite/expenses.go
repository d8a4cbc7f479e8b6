package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
)

const expenseColumns = `id, group_id, description, amount, paid_by, created_by, category_id,
	receipt_url, receipt_public_id, receipt_filename, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	e := &models.Expense{}
	var categoryID, receiptURL, receiptPublicID, receiptFilename sql.NullString
	err := row.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.PaidBy, &e.CreatedBy, &categoryID,
		&receiptURL, &receiptPublicID, &receiptFilename, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.CategoryID = categoryID.String
	if receiptURL.Valid {
		e.Receipt = &models.Receipt{
			URL:      receiptURL.String,
			PublicID: receiptPublicID.String,
			Filename: receiptFilename.String,
		}
	}
	return e, nil
}

func receiptArgs(r *models.Receipt) (url, publicID, filename any) {
	if r == nil {
		return nil, nil, nil
	}
	return nullable(r.URL), nullable(r.PublicID), nullable(r.Filename)
}

// CreateExpense persists a new expense with its splits and tags.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	expense.UpdatedAt = expense.CreatedAt

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	url, publicID, filename := receiptArgs(expense.Receipt)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Description, expense.Amount, expense.PaidBy, expense.CreatedBy,
		nullable(expense.CategoryID), url, publicID, filename, expense.CreatedAt, expense.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertSplitsAndTags(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertSplitsAndTags(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for _, split := range expense.Splits {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, user_id, share) VALUES (?, ?, ?)",
			expense.ID, split.UserID, split.Share,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}
	for _, tag := range expense.Tags {
		_, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO expense_tags (expense_id, tag) VALUES (?, ?)",
			expense.ID, tag,
		)
		if err != nil {
			return fmt.Errorf("failed to insert tag: %w", err)
		}
	}
	return nil
}

// GetExpense retrieves an expense with its splits and tags.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID)
	expense, err := scanExpense(row)
	if isNoRows(err) {
		return nil, notFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	byID := map[string]*models.Expense{expense.ID: expense}
	if err := s.attachSplits(ctx, byID, "s.expense_id = ?", expenseID); err != nil {
		return nil, err
	}
	if err := s.attachTags(ctx, byID, "t.expense_id = ?", expenseID); err != nil {
		return nil, err
	}
	return expense, nil
}

// UpdateExpense replaces every mutable field of the expense, including splits and tags.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	url, publicID, filename := receiptArgs(expense.Receipt)
	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET description = ?, amount = ?, paid_by = ?, category_id = ?,
		 receipt_url = ?, receipt_public_id = ?, receipt_filename = ?, updated_at = ?
		 WHERE id = ?`,
		expense.Description, expense.Amount, expense.PaidBy, nullable(expense.CategoryID),
		url, publicID, filename, expense.UpdatedAt, expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if err := checkAffected(res, "expense", expense.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear splits: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_tags WHERE expense_id = ?", expense.ID); err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}
	if err := insertSplitsAndTags(ctx, tx, expense); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense. Settlements that referenced it are kept
// as general group settlements.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return checkAffected(res, "expense", expenseID)
}

// ListExpensesByGroup returns the group's expenses, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY created_at DESC, id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
		byID[expense.ID] = expense
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	where := "s.expense_id IN (SELECT id FROM expenses WHERE group_id = ?)"
	if err := s.attachSplits(ctx, byID, where, groupID); err != nil {
		return nil, err
	}
	where = "t.expense_id IN (SELECT id FROM expenses WHERE group_id = ?)"
	if err := s.attachTags(ctx, byID, where, groupID); err != nil {
		return nil, err
	}
	return expenses, nil
}

func (s *SQLiteStore) attachSplits(ctx context.Context, byID map[string]*models.Expense, where string, args ...any) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT s.expense_id, s.user_id, s.share FROM expense_splits s WHERE "+where+" ORDER BY s.expense_id, s.user_id",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID string
		var split models.Split
		if err := rows.Scan(&expenseID, &split.UserID, &split.Share); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Splits = append(e.Splits, split)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}
	return nil
}

func (s *SQLiteStore) attachTags(ctx context.Context, byID map[string]*models.Expense, where string, args ...any) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT t.expense_id, t.tag FROM expense_tags t WHERE "+where+" ORDER BY t.expense_id, t.tag",
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID, tag string
		if err := rows.Scan(&expenseID, &tag); err != nil {
			return fmt.Errorf("failed to scan tag: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Tags = append(e.Tags, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate tags: %w", err)
	}
	return nil
}
