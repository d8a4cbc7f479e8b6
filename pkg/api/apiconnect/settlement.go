package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService service.
const SettlementServiceName = "settleup.v1.SettlementService"

const (
	SettlementServiceCreateSettlementProcedure     = "/settleup.v1.SettlementService/CreateSettlement"
	SettlementServiceCheckSettlementProcedure      = "/settleup.v1.SettlementService/CheckSettlement"
	SettlementServiceListGroupSettlementsProcedure = "/settleup.v1.SettlementService/ListGroupSettlements"
	SettlementServiceListUserSettlementsProcedure  = "/settleup.v1.SettlementService/ListUserSettlements"
	SettlementServiceGetPairwiseBalanceProcedure   = "/settleup.v1.SettlementService/GetPairwiseBalance"
)

// SettlementServiceHandler is implemented by the server.
type SettlementServiceHandler interface {
	CreateSettlement(context.Context, *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error)
	CheckSettlement(context.Context, *connect.Request[api.CheckSettlementRequest]) (*connect.Response[api.CheckSettlementResponse], error)
	ListGroupSettlements(context.Context, *connect.Request[api.ListGroupSettlementsRequest]) (*connect.Response[api.ListGroupSettlementsResponse], error)
	ListUserSettlements(context.Context, *connect.Request[api.ListUserSettlementsRequest]) (*connect.Response[api.ListUserSettlementsResponse], error)
	GetPairwiseBalance(context.Context, *connect.Request[api.GetPairwiseBalanceRequest]) (*connect.Response[api.GetPairwiseBalanceResponse], error)
}

// NewSettlementServiceHandler builds an HTTP handler from the service implementation.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return route(SettlementServiceName, map[string]http.Handler{
		SettlementServiceCreateSettlementProcedure:     newHandler(SettlementServiceCreateSettlementProcedure, svc.CreateSettlement, opts),
		SettlementServiceCheckSettlementProcedure:      newHandler(SettlementServiceCheckSettlementProcedure, svc.CheckSettlement, opts),
		SettlementServiceListGroupSettlementsProcedure: newHandler(SettlementServiceListGroupSettlementsProcedure, svc.ListGroupSettlements, opts),
		SettlementServiceListUserSettlementsProcedure:  newHandler(SettlementServiceListUserSettlementsProcedure, svc.ListUserSettlements, opts),
		SettlementServiceGetPairwiseBalanceProcedure:   newHandler(SettlementServiceGetPairwiseBalanceProcedure, svc.GetPairwiseBalance, opts),
	})
}

// SettlementServiceClient is a client for the settleup.v1.SettlementService service.
type SettlementServiceClient struct {
	createSettlement     *connect.Client[api.CreateSettlementRequest, api.CreateSettlementResponse]
	checkSettlement      *connect.Client[api.CheckSettlementRequest, api.CheckSettlementResponse]
	listGroupSettlements *connect.Client[api.ListGroupSettlementsRequest, api.ListGroupSettlementsResponse]
	listUserSettlements  *connect.Client[api.ListUserSettlementsRequest, api.ListUserSettlementsResponse]
	getPairwiseBalance   *connect.Client[api.GetPairwiseBalanceRequest, api.GetPairwiseBalanceResponse]
}

// NewSettlementServiceClient constructs a client for the settleup.v1.SettlementService service.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	return &SettlementServiceClient{
		createSettlement:     newClient[api.CreateSettlementRequest, api.CreateSettlementResponse](httpClient, baseURL, SettlementServiceCreateSettlementProcedure, opts),
		checkSettlement:      newClient[api.CheckSettlementRequest, api.CheckSettlementResponse](httpClient, baseURL, SettlementServiceCheckSettlementProcedure, opts),
		listGroupSettlements: newClient[api.ListGroupSettlementsRequest, api.ListGroupSettlementsResponse](httpClient, baseURL, SettlementServiceListGroupSettlementsProcedure, opts),
		listUserSettlements:  newClient[api.ListUserSettlementsRequest, api.ListUserSettlementsResponse](httpClient, baseURL, SettlementServiceListUserSettlementsProcedure, opts),
		getPairwiseBalance:   newClient[api.GetPairwiseBalanceRequest, api.GetPairwiseBalanceResponse](httpClient, baseURL, SettlementServiceGetPairwiseBalanceProcedure, opts),
	}
}

// CreateSettlement calls SettlementService.CreateSettlement.
func (c *SettlementServiceClient) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	return c.createSettlement.CallUnary(ctx, req)
}

// CheckSettlement calls SettlementService.CheckSettlement.
func (c *SettlementServiceClient) CheckSettlement(ctx context.Context, req *connect.Request[api.CheckSettlementRequest]) (*connect.Response[api.CheckSettlementResponse], error) {
	return c.checkSettlement.CallUnary(ctx, req)
}

// ListGroupSettlements calls SettlementService.ListGroupSettlements.
func (c *SettlementServiceClient) ListGroupSettlements(ctx context.Context, req *connect.Request[api.ListGroupSettlementsRequest]) (*connect.Response[api.ListGroupSettlementsResponse], error) {
	return c.listGroupSettlements.CallUnary(ctx, req)
}

// ListUserSettlements calls SettlementService.ListUserSettlements.
func (c *SettlementServiceClient) ListUserSettlements(ctx context.Context, req *connect.Request[api.ListUserSettlementsRequest]) (*connect.Response[api.ListUserSettlementsResponse], error) {
	return c.listUserSettlements.CallUnary(ctx, req)
}

// GetPairwiseBalance calls SettlementService.GetPairwiseBalance.
func (c *SettlementServiceClient) GetPairwiseBalance(ctx context.Context, req *connect.Request[api.GetPairwiseBalanceRequest]) (*connect.Response[api.GetPairwiseBalanceResponse], error) {
	return c.getPairwiseBalance.CallUnary(ctx, req)
}
