package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// ExpenseServiceName is the fully-qualified name of the ExpenseService service.
const ExpenseServiceName = "settleup.v1.ExpenseService"

const (
	ExpenseServiceCreateExpenseProcedure  = "/settleup.v1.ExpenseService/CreateExpense"
	ExpenseServiceGetExpenseProcedure     = "/settleup.v1.ExpenseService/GetExpense"
	ExpenseServiceUpdateExpenseProcedure  = "/settleup.v1.ExpenseService/UpdateExpense"
	ExpenseServiceDeleteExpenseProcedure  = "/settleup.v1.ExpenseService/DeleteExpense"
	ExpenseServiceListExpensesProcedure   = "/settleup.v1.ExpenseService/ListExpenses"
	ExpenseServiceSearchExpensesProcedure = "/settleup.v1.ExpenseService/SearchExpenses"
	ExpenseServiceAttachReceiptProcedure  = "/settleup.v1.ExpenseService/AttachReceipt"
	ExpenseServiceRemoveReceiptProcedure  = "/settleup.v1.ExpenseService/RemoveReceipt"
)

// ExpenseServiceHandler is implemented by the server.
type ExpenseServiceHandler interface {
	CreateExpense(context.Context, *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error)
	GetExpense(context.Context, *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error)
	UpdateExpense(context.Context, *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	SearchExpenses(context.Context, *connect.Request[api.SearchExpensesRequest]) (*connect.Response[api.SearchExpensesResponse], error)
	AttachReceipt(context.Context, *connect.Request[api.AttachReceiptRequest]) (*connect.Response[api.AttachReceiptResponse], error)
	RemoveReceipt(context.Context, *connect.Request[api.RemoveReceiptRequest]) (*connect.Response[api.RemoveReceiptResponse], error)
}

// NewExpenseServiceHandler builds an HTTP handler from the service implementation.
func NewExpenseServiceHandler(svc ExpenseServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return route(ExpenseServiceName, map[string]http.Handler{
		ExpenseServiceCreateExpenseProcedure:  newHandler(ExpenseServiceCreateExpenseProcedure, svc.CreateExpense, opts),
		ExpenseServiceGetExpenseProcedure:     newHandler(ExpenseServiceGetExpenseProcedure, svc.GetExpense, opts),
		ExpenseServiceUpdateExpenseProcedure:  newHandler(ExpenseServiceUpdateExpenseProcedure, svc.UpdateExpense, opts),
		ExpenseServiceDeleteExpenseProcedure:  newHandler(ExpenseServiceDeleteExpenseProcedure, svc.DeleteExpense, opts),
		ExpenseServiceListExpensesProcedure:   newHandler(ExpenseServiceListExpensesProcedure, svc.ListExpenses, opts),
		ExpenseServiceSearchExpensesProcedure: newHandler(ExpenseServiceSearchExpensesProcedure, svc.SearchExpenses, opts),
		ExpenseServiceAttachReceiptProcedure:  newHandler(ExpenseServiceAttachReceiptProcedure, svc.AttachReceipt, opts),
		ExpenseServiceRemoveReceiptProcedure:  newHandler(ExpenseServiceRemoveReceiptProcedure, svc.RemoveReceipt, opts),
	})
}

// ExpenseServiceClient is a client for the settleup.v1.ExpenseService service.
type ExpenseServiceClient struct {
	createExpense  *connect.Client[api.CreateExpenseRequest, api.CreateExpenseResponse]
	getExpense     *connect.Client[api.GetExpenseRequest, api.GetExpenseResponse]
	updateExpense  *connect.Client[api.UpdateExpenseRequest, api.UpdateExpenseResponse]
	deleteExpense  *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	listExpenses   *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	searchExpenses *connect.Client[api.SearchExpensesRequest, api.SearchExpensesResponse]
	attachReceipt  *connect.Client[api.AttachReceiptRequest, api.AttachReceiptResponse]
	removeReceipt  *connect.Client[api.RemoveReceiptRequest, api.RemoveReceiptResponse]
}

// NewExpenseServiceClient constructs a client for the settleup.v1.ExpenseService service.
func NewExpenseServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ExpenseServiceClient {
	return &ExpenseServiceClient{
		createExpense:  newClient[api.CreateExpenseRequest, api.CreateExpenseResponse](httpClient, baseURL, ExpenseServiceCreateExpenseProcedure, opts),
		getExpense:     newClient[api.GetExpenseRequest, api.GetExpenseResponse](httpClient, baseURL, ExpenseServiceGetExpenseProcedure, opts),
		updateExpense:  newClient[api.UpdateExpenseRequest, api.UpdateExpenseResponse](httpClient, baseURL, ExpenseServiceUpdateExpenseProcedure, opts),
		deleteExpense:  newClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL, ExpenseServiceDeleteExpenseProcedure, opts),
		listExpenses:   newClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL, ExpenseServiceListExpensesProcedure, opts),
		searchExpenses: newClient[api.SearchExpensesRequest, api.SearchExpensesResponse](httpClient, baseURL, ExpenseServiceSearchExpensesProcedure, opts),
		attachReceipt:  newClient[api.AttachReceiptRequest, api.AttachReceiptResponse](httpClient, baseURL, ExpenseServiceAttachReceiptProcedure, opts),
		removeReceipt:  newClient[api.RemoveReceiptRequest, api.RemoveReceiptResponse](httpClient, baseURL, ExpenseServiceRemoveReceiptProcedure, opts),
	}
}

// CreateExpense calls ExpenseService.CreateExpense.
func (c *ExpenseServiceClient) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	return c.createExpense.CallUnary(ctx, req)
}

// GetExpense calls ExpenseService.GetExpense.
func (c *ExpenseServiceClient) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	return c.getExpense.CallUnary(ctx, req)
}

// UpdateExpense calls ExpenseService.UpdateExpense.
func (c *ExpenseServiceClient) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	return c.updateExpense.CallUnary(ctx, req)
}

// DeleteExpense calls ExpenseService.DeleteExpense.
func (c *ExpenseServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

// ListExpenses calls ExpenseService.ListExpenses.
func (c *ExpenseServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

// SearchExpenses calls ExpenseService.SearchExpenses.
func (c *ExpenseServiceClient) SearchExpenses(ctx context.Context, req *connect.Request[api.SearchExpensesRequest]) (*connect.Response[api.SearchExpensesResponse], error) {
	return c.searchExpenses.CallUnary(ctx, req)
}

// AttachReceipt calls ExpenseService.AttachReceipt.
func (c *ExpenseServiceClient) AttachReceipt(ctx context.Context, req *connect.Request[api.AttachReceiptRequest]) (*connect.Response[api.AttachReceiptResponse], error) {
	return c.attachReceipt.CallUnary(ctx, req)
}

// RemoveReceipt calls ExpenseService.RemoveReceipt.
func (c *ExpenseServiceClient) RemoveReceipt(ctx context.Context, req *connect.Request[api.RemoveReceiptRequest]) (*connect.Response[api.RemoveReceiptResponse], error) {
	return c.removeReceipt.CallUnary(ctx, req)
}
