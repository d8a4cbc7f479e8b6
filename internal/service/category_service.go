package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/logging"
)

// defaultCategories are suggestions offered to new users. They are not stored;
// a client creates the ones it wants through CreateCategory.
var defaultCategories = []api.Category{
	{Name: "Food & Dining", Description: "Restaurants, groceries, food delivery", IsDefault: true},
	{Name: "Transportation", Description: "Gas, public transport, rideshare", IsDefault: true},
	{Name: "Entertainment", Description: "Movies, games, subscriptions", IsDefault: true},
	{Name: "Shopping", Description: "Clothing, electronics, general shopping", IsDefault: true},
	{Name: "Travel", Description: "Hotels, flights, vacation expenses", IsDefault: true},
	{Name: "Utilities", Description: "Electricity, water, internet bills", IsDefault: true},
	{Name: "Healthcare", Description: "Medical expenses, pharmacy", IsDefault: true},
	{Name: "Education", Description: "Books, courses, school expenses", IsDefault: true},
}

// CategoryService implements the Connect CategoryService.
type CategoryService struct {
	store  storage.CategoryStore
	logger *slog.Logger
}

func NewCategoryService(store storage.CategoryStore, logger *slog.Logger) *CategoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoryService{store: store, logger: logger}
}

// ownCategory loads a category created by userID. Categories of other users
// are reported as missing.
func (s *CategoryService) ownCategory(ctx context.Context, categoryID, userID string) (*models.Category, error) {
	category, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if category.CreatedBy != userID {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("category %s: %w", categoryID, storage.ErrNotFound))
	}
	return category, nil
}

func (s *CategoryService) CreateCategory(ctx context.Context, req *connect.Request[api.CreateCategoryRequest]) (*connect.Response[api.CreateCategoryResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("category name is required")
	}

	category := &models.Category{
		Name:        name,
		Description: strings.TrimSpace(req.Msg.Description),
		CreatedBy:   userID,
	}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		s.logger.WarnContext(ctx, "CreateCategory failed", logging.KeyUserID, userID, "name", name, logging.KeyError, err)
		return nil, toConnectError(err)
	}
	s.logger.InfoContext(ctx, "Category created", "category_id", category.ID, logging.KeyUserID, userID)
	return connect.NewResponse(&api.CreateCategoryResponse{Category: toAPICategory(category)}), nil
}

func (s *CategoryService) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.store.ListCategoriesByUser(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	out := make([]api.Category, len(categories))
	for i, c := range categories {
		out[i] = toAPICategory(c)
	}
	return connect.NewResponse(&api.ListCategoriesResponse{Categories: out}), nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, req *connect.Request[api.UpdateCategoryRequest]) (*connect.Response[api.UpdateCategoryResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	category, err := s.ownCategory(ctx, req.Msg.CategoryID, userID)
	if err != nil {
		return nil, err
	}

	if req.Msg.Name != nil {
		name := strings.TrimSpace(*req.Msg.Name)
		if name == "" {
			return nil, invalidArgument("category name cannot be empty")
		}
		category.Name = name
	}
	if req.Msg.Description != nil {
		category.Description = strings.TrimSpace(*req.Msg.Description)
	}

	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.UpdateCategoryResponse{Category: toAPICategory(category)}), nil
}

// DeleteCategory removes one of the caller's categories. Expenses using it become uncategorized.
func (s *CategoryService) DeleteCategory(ctx context.Context, req *connect.Request[api.DeleteCategoryRequest]) (*connect.Response[api.DeleteCategoryResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	category, err := s.ownCategory(ctx, req.Msg.CategoryID, userID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteCategory(ctx, category.ID); err != nil {
		return nil, toConnectError(err)
	}
	s.logger.InfoContext(ctx, "Category deleted", "category_id", category.ID, logging.KeyUserID, userID)
	return connect.NewResponse(&api.DeleteCategoryResponse{}), nil
}

func (s *CategoryService) ListDefaultCategories(ctx context.Context, req *connect.Request[api.ListDefaultCategoriesRequest]) (*connect.Response[api.ListDefaultCategoriesResponse], error) {
	out := make([]api.Category, len(defaultCategories))
	copy(out, defaultCategories)
	return connect.NewResponse(&api.ListDefaultCategoriesResponse{Categories: out}), nil
}
