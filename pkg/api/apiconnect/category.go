package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// CategoryServiceName is the fully-qualified name of the CategoryService service.
const CategoryServiceName = "settleup.v1.CategoryService"

const (
	CategoryServiceCreateCategoryProcedure        = "/settleup.v1.CategoryService/CreateCategory"
	CategoryServiceListCategoriesProcedure        = "/settleup.v1.CategoryService/ListCategories"
	CategoryServiceUpdateCategoryProcedure        = "/settleup.v1.CategoryService/UpdateCategory"
	CategoryServiceDeleteCategoryProcedure        = "/settleup.v1.CategoryService/DeleteCategory"
	CategoryServiceListDefaultCategoriesProcedure = "/settleup.v1.CategoryService/ListDefaultCategories"
)

// CategoryServiceHandler is implemented by the server.
type CategoryServiceHandler interface {
	CreateCategory(context.Context, *connect.Request[api.CreateCategoryRequest]) (*connect.Response[api.CreateCategoryResponse], error)
	ListCategories(context.Context, *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error)
	UpdateCategory(context.Context, *connect.Request[api.UpdateCategoryRequest]) (*connect.Response[api.UpdateCategoryResponse], error)
	DeleteCategory(context.Context, *connect.Request[api.DeleteCategoryRequest]) (*connect.Response[api.DeleteCategoryResponse], error)
	ListDefaultCategories(context.Context, *connect.Request[api.ListDefaultCategoriesRequest]) (*connect.Response[api.ListDefaultCategoriesResponse], error)
}

// NewCategoryServiceHandler builds an HTTP handler from the service implementation.
func NewCategoryServiceHandler(svc CategoryServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return route(CategoryServiceName, map[string]http.Handler{
		CategoryServiceCreateCategoryProcedure:        newHandler(CategoryServiceCreateCategoryProcedure, svc.CreateCategory, opts),
		CategoryServiceListCategoriesProcedure:        newHandler(CategoryServiceListCategoriesProcedure, svc.ListCategories, opts),
		CategoryServiceUpdateCategoryProcedure:        newHandler(CategoryServiceUpdateCategoryProcedure, svc.UpdateCategory, opts),
		CategoryServiceDeleteCategoryProcedure:        newHandler(CategoryServiceDeleteCategoryProcedure, svc.DeleteCategory, opts),
		CategoryServiceListDefaultCategoriesProcedure: newHandler(CategoryServiceListDefaultCategoriesProcedure, svc.ListDefaultCategories, opts),
	})
}

// CategoryServiceClient is a client for the settleup.v1.CategoryService service.
type CategoryServiceClient struct {
	createCategory        *connect.Client[api.CreateCategoryRequest, api.CreateCategoryResponse]
	listCategories        *connect.Client[api.ListCategoriesRequest, api.ListCategoriesResponse]
	updateCategory        *connect.Client[api.UpdateCategoryRequest, api.UpdateCategoryResponse]
	deleteCategory        *connect.Client[api.DeleteCategoryRequest, api.DeleteCategoryResponse]
	listDefaultCategories *connect.Client[api.ListDefaultCategoriesRequest, api.ListDefaultCategoriesResponse]
}

// NewCategoryServiceClient constructs a client for the settleup.v1.CategoryService service.
func NewCategoryServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *CategoryServiceClient {
	return &CategoryServiceClient{
		createCategory:        newClient[api.CreateCategoryRequest, api.CreateCategoryResponse](httpClient, baseURL, CategoryServiceCreateCategoryProcedure, opts),
		listCategories:        newClient[api.ListCategoriesRequest, api.ListCategoriesResponse](httpClient, baseURL, CategoryServiceListCategoriesProcedure, opts),
		updateCategory:        newClient[api.UpdateCategoryRequest, api.UpdateCategoryResponse](httpClient, baseURL, CategoryServiceUpdateCategoryProcedure, opts),
		deleteCategory:        newClient[api.DeleteCategoryRequest, api.DeleteCategoryResponse](httpClient, baseURL, CategoryServiceDeleteCategoryProcedure, opts),
		listDefaultCategories: newClient[api.ListDefaultCategoriesRequest, api.ListDefaultCategoriesResponse](httpClient, baseURL, CategoryServiceListDefaultCategoriesProcedure, opts),
	}
}

// CreateCategory calls CategoryService.CreateCategory.
func (c *CategoryServiceClient) CreateCategory(ctx context.Context, req *connect.Request[api.CreateCategoryRequest]) (*connect.Response[api.CreateCategoryResponse], error) {
	return c.createCategory.CallUnary(ctx, req)
}

// ListCategories calls CategoryService.ListCategories.
func (c *CategoryServiceClient) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	return c.listCategories.CallUnary(ctx, req)
}

// UpdateCategory calls CategoryService.UpdateCategory.
func (c *CategoryServiceClient) UpdateCategory(ctx context.Context, req *connect.Request[api.UpdateCategoryRequest]) (*connect.Response[api.UpdateCategoryResponse], error) {
	return c.updateCategory.CallUnary(ctx, req)
}

// DeleteCategory calls CategoryService.DeleteCategory.
func (c *CategoryServiceClient) DeleteCategory(ctx context.Context, req *connect.Request[api.DeleteCategoryRequest]) (*connect.Response[api.DeleteCategoryResponse], error) {
	return c.deleteCategory.CallUnary(ctx, req)
}

// ListDefaultCategories calls CategoryService.ListDefaultCategories.
func (c *CategoryServiceClient) ListDefaultCategories(ctx context.Context, req *connect.Request[api.ListDefaultCategoriesRequest]) (*connect.Response[api.ListDefaultCategoriesResponse], error) {
	return c.listDefaultCategories.CallUnary(ctx, req)
}
