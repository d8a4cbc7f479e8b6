package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/settleup/internal/models"
)

const expenseColumns = `e.id, e.group_id, e.description, e.amount::text, e.paid_by, e.created_by, e.category_id,
	e.receipt_url, e.receipt_public_id, e.receipt_filename, e.created_at, e.updated_at`

func scanExpense(row pgx.Row) (*models.Expense, error) {
	e := &models.Expense{}
	var amount string
	var categoryID, receiptURL, receiptPublicID, receiptFilename *string
	err := row.Scan(&e.ID, &e.GroupID, &e.Description, &amount, &e.PaidBy, &e.CreatedBy, &categoryID,
		&receiptURL, &receiptPublicID, &receiptFilename, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if e.Amount, err = parseAmount(amount); err != nil {
		return nil, err
	}
	e.CategoryID = text(categoryID)
	if receiptURL != nil {
		e.Receipt = &models.Receipt{
			URL:      *receiptURL,
			PublicID: text(receiptPublicID),
			Filename: text(receiptFilename),
		}
	}
	return e, nil
}

func receiptArgs(r *models.Receipt) (url, publicID, filename *string) {
	if r == nil {
		return nil, nil, nil
	}
	return nullable(r.URL), nullable(r.PublicID), nullable(r.Filename)
}

// CreateExpense persists a new expense with its splits and tags.
func (s *Store) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	expense.UpdatedAt = expense.CreatedAt

	url, publicID, filename := receiptArgs(expense.Receipt)
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO expenses (id, group_id, description, amount, paid_by, created_by, category_id,
			 receipt_url, receipt_public_id, receipt_filename, created_at, updated_at)
			 VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10, $11, $12)`,
			expense.ID, expense.GroupID, expense.Description, expense.Amount.String(), expense.PaidBy, expense.CreatedBy,
			nullable(expense.CategoryID), url, publicID, filename, expense.CreatedAt, expense.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		return insertSplitsAndTags(ctx, tx, expense)
	})
}

func insertSplitsAndTags(ctx context.Context, tx pgx.Tx, expense *models.Expense) error {
	batch := &pgx.Batch{}
	for _, split := range expense.Splits {
		batch.Queue(
			"INSERT INTO expense_splits (expense_id, user_id, share) VALUES ($1, $2, $3::numeric)",
			expense.ID, split.UserID, split.Share.String(),
		)
	}
	for _, tag := range expense.Tags {
		batch.Queue(
			"INSERT INTO expense_tags (expense_id, tag) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			expense.ID, tag,
		)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert splits and tags: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense with its splits and tags.
func (s *Store) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.pool.QueryRow(ctx,
		"SELECT "+expenseColumns+" FROM expenses e WHERE e.id = $1", expenseID))
	if isNoRows(err) {
		return nil, notFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	byID := map[string]*models.Expense{expense.ID: expense}
	if err := s.attachDetails(ctx, byID, "expense_id = $1", expenseID); err != nil {
		return nil, err
	}
	return expense, nil
}

// UpdateExpense replaces every mutable field of the expense, including splits and tags.
func (s *Store) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().Unix()

	url, publicID, filename := receiptArgs(expense.Receipt)
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE expenses SET description = $1, amount = $2::numeric, paid_by = $3, category_id = $4,
			 receipt_url = $5, receipt_public_id = $6, receipt_filename = $7, updated_at = $8
			 WHERE id = $9`,
			expense.Description, expense.Amount.String(), expense.PaidBy, nullable(expense.CategoryID),
			url, publicID, filename, expense.UpdatedAt, expense.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		if err := checkAffected(tag, "expense", expense.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM expense_splits WHERE expense_id = $1", expense.ID); err != nil {
			return fmt.Errorf("failed to clear splits: %w", err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM expense_tags WHERE expense_id = $1", expense.ID); err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		return insertSplitsAndTags(ctx, tx, expense)
	})
}

// DeleteExpense removes an expense. Settlements that referenced it are kept
// as general group settlements.
func (s *Store) DeleteExpense(ctx context.Context, expenseID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM expenses WHERE id = $1", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return checkAffected(tag, "expense", expenseID)
}

// ListExpensesByGroup returns the group's expenses, newest first.
func (s *Store) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+expenseColumns+" FROM expenses e WHERE e.group_id = $1 ORDER BY e.created_at DESC, e.id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
		byID[expense.ID] = expense
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	if len(expenses) == 0 {
		return expenses, nil
	}

	where := "expense_id IN (SELECT id FROM expenses WHERE group_id = $1)"
	if err := s.attachDetails(ctx, byID, where, groupID); err != nil {
		return nil, err
	}
	return expenses, nil
}

// attachDetails loads splits and tags for the expenses in byID in one round trip.
func (s *Store) attachDetails(ctx context.Context, byID map[string]*models.Expense, where string, arg any) error {
	batch := &pgx.Batch{}
	batch.Queue("SELECT expense_id, user_id, share::text FROM expense_splits WHERE "+where+" ORDER BY expense_id, user_id", arg)
	batch.Queue("SELECT expense_id, tag FROM expense_tags WHERE "+where+" ORDER BY expense_id, tag", arg)

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	rows, err := results.Query()
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	for rows.Next() {
		var expenseID, userID, share string
		if err := rows.Scan(&expenseID, &userID, &share); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan split: %w", err)
		}
		amount, err := parseAmount(share)
		if err != nil {
			rows.Close()
			return err
		}
		if e, ok := byID[expenseID]; ok {
			e.Splits = append(e.Splits, models.Split{UserID: userID, Share: amount})
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}

	rows, err = results.Query()
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
