package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

func TestCategories(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	created, err := env.categories.CreateCategory(ctx, as(env.alice, &api.CreateCategoryRequest{Name: " Groceries ", Description: "Weekly shop"}))
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	cat := created.Msg.Category
	if cat.ID == "" || cat.Name != "Groceries" || cat.CreatedBy != env.alice {
		t.Errorf("unexpected category: %+v", cat)
	}

	_, err = env.categories.CreateCategory(ctx, as(env.alice, &api.CreateCategoryRequest{Name: "GROCERIES"}))
	assertCode(t, err, connect.CodeAlreadyExists)

	// Names are unique per user only.
	if _, err := env.categories.CreateCategory(ctx, as(env.bob, &api.CreateCategoryRequest{Name: "Groceries"})); err != nil {
		t.Fatalf("CreateCategory for another user failed: %v", err)
	}
	if _, err := env.categories.CreateCategory(ctx, as(env.alice, &api.CreateCategoryRequest{Name: "Bills"})); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	list, err := env.categories.ListCategories(ctx, as(env.alice, &api.ListCategoriesRequest{}))
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(list.Msg.Categories) != 2 || list.Msg.Categories[0].Name != "Bills" {
		t.Errorf("expected [Bills Groceries], got %+v", list.Msg.Categories)
	}

	name := "Food"
	_, err = env.categories.UpdateCategory(ctx, as(env.bob, &api.UpdateCategoryRequest{CategoryID: cat.ID, Name: &name}))
	assertCode(t, err, connect.CodeNotFound)

	updated, err := env.categories.UpdateCategory(ctx, as(env.alice, &api.UpdateCategoryRequest{CategoryID: cat.ID, Name: &name}))
	if err != nil {
		t.Fatalf("UpdateCategory failed: %v", err)
	}
	if updated.Msg.Category.Name != "Food" || updated.Msg.Category.Description != "Weekly shop" {
		t.Errorf("unexpected category after update: %+v", updated.Msg.Category)
	}

	bills := "bills"
	_, err = env.categories.UpdateCategory(ctx, as(env.alice, &api.UpdateCategoryRequest{CategoryID: cat.ID, Name: &bills}))
	assertCode(t, err, connect.CodeAlreadyExists)

	_, err = env.categories.DeleteCategory(ctx, as(env.bob, &api.DeleteCategoryRequest{CategoryID: cat.ID}))
	assertCode(t, err, connect.CodeNotFound)

	if _, err := env.categories.DeleteCategory(ctx, as(env.alice, &api.DeleteCategoryRequest{CategoryID: cat.ID})); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
	_, err = env.categories.DeleteCategory(ctx, as(env.alice, &api.DeleteCategoryRequest{CategoryID: cat.ID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestDeleteCategory_UncategorizesExpenses(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createGroup(t, env.alice, env.bob)

	created, err := env.categories.CreateCategory(ctx, as(env.alice, &api.CreateCategoryRequest{Name: "Travel"}))
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	categoryID := created.Msg.Category.ID

	expense, err := env.expenses.CreateExpense(ctx, as(env.alice, &api.CreateExpenseRequest{
		GroupID:     group.ID,
		Description: "Train",
		Amount:      amt("20"),
		Splits:      []api.Split{{UserID: env.alice, Share: amt("10")}, {UserID: env.bob, Share: amt("10")}},
		CategoryID:  categoryID,
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	if expense.Msg.Expense.CategoryID != categoryID {
		t.Fatalf("categoryId: expected %s, got %s", categoryID, expense.Msg.Expense.CategoryID)
	}

	filtered, err := env.expenses.ListExpenses(ctx, as(env.bob, &api.ListExpensesRequest{
		GroupID: group.ID,
		Filter:  api.ExpenseFilter{CategoryID: categoryID},
	}))
	if err != nil {
		t.Fatalf("ListExpenses failed: %v", err)
	}
	if filtered.Msg.Total != 1 {
		t.Errorf("expected 1 expense in category, got %d", filtered.Msg.Total)
	}

	if _, err := env.categories.DeleteCategory(ctx, as(env.alice, &api.DeleteCategoryRequest{CategoryID: categoryID})); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}
	got, err := env.expenses.GetExpense(ctx, as(env.bob, &api.GetExpenseRequest{ExpenseID: expense.Msg.Expense.ID}))
	if err != nil {
		t.Fatalf("GetExpense failed: %v", err)
	}
	if got.Msg.Expense.CategoryID != "" {
		t.Errorf("expected the expense to be uncategorized, got %q", got.Msg.Expense.CategoryID)
	}
}

func TestListDefaultCategories(t *testing.T) {
	env := setupTestServer(t)
	resp, err := env.categories.ListDefaultCategories(context.Background(), as(env.alice, &api.ListDefaultCategoriesRequest{}))
	if err != nil {
		t.Fatalf("ListDefaultCategories failed: %v", err)
	}
	if len(resp.Msg.Categories) != 8 {
		t.Errorf("expected 8 default categories, got %d", len(resp.Msg.Categories))
	}
	for _, c := range resp.Msg.Categories {
		if !c.IsDefault || c.Name == "" || c.ID != "" {
			t.Errorf("unexpected default category: %+v", c)
		}
	}
}
