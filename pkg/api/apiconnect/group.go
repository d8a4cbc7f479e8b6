package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService service.
const GroupServiceName = "settleup.v1.GroupService"

const (
	GroupServiceCreateGroupProcedure      = "/settleup.v1.GroupService/CreateGroup"
	GroupServiceGetGroupProcedure         = "/settleup.v1.GroupService/GetGroup"
	GroupServiceListGroupsProcedure       = "/settleup.v1.GroupService/ListGroups"
	GroupServiceUpdateGroupProcedure      = "/settleup.v1.GroupService/UpdateGroup"
	GroupServiceDeleteGroupProcedure      = "/settleup.v1.GroupService/DeleteGroup"
	GroupServiceAddMemberProcedure        = "/settleup.v1.GroupService/AddMember"
	GroupServiceRemoveMemberProcedure     = "/settleup.v1.GroupService/RemoveMember"
	GroupServiceGetGroupBalancesProcedure = "/settleup.v1.GroupService/GetGroupBalances"
	GroupServiceGetUserBalancesProcedure  = "/settleup.v1.GroupService/GetUserBalances"
)

// GroupServiceHandler is implemented by the server.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	GetGroup(context.Context, *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error)
	ListGroups(context.Context, *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error)
	UpdateGroup(context.Context, *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error)
	DeleteGroup(context.Context, *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error)
	AddMember(context.Context, *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error)
	RemoveMember(context.Context, *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	GetUserBalances(context.Context, *connect.Request[api.GetUserBalancesRequest]) (*connect.Response[api.GetUserBalancesResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return route(GroupServiceName, map[string]http.Handler{
		GroupServiceCreateGroupProcedure:      newHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts),
		GroupServiceGetGroupProcedure:         newHandler(GroupServiceGetGroupProcedure, svc.GetGroup, opts),
		GroupServiceListGroupsProcedure:       newHandler(GroupServiceListGroupsProcedure, svc.ListGroups, opts),
		GroupServiceUpdateGroupProcedure:      newHandler(GroupServiceUpdateGroupProcedure, svc.UpdateGroup, opts),
		GroupServiceDeleteGroupProcedure:      newHandler(GroupServiceDeleteGroupProcedure, svc.DeleteGroup, opts),
		GroupServiceAddMemberProcedure:        newHandler(GroupServiceAddMemberProcedure, svc.AddMember, opts),
		GroupServiceRemoveMemberProcedure:     newHandler(GroupServiceRemoveMemberProcedure, svc.RemoveMember, opts),
		GroupServiceGetGroupBalancesProcedure: newHandler(GroupServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts),
		GroupServiceGetUserBalancesProcedure:  newHandler(GroupServiceGetUserBalancesProcedure, svc.GetUserBalances, opts),
	})
}

// GroupServiceClient is a client for the settleup.v1.GroupService service.
type GroupServiceClient struct {
	createGroup      *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	getGroup         *connect.Client[api.GetGroupRequest, api.GetGroupResponse]
	listGroups       *connect.Client[api.ListGroupsRequest, api.ListGroupsResponse]
	updateGroup      *connect.Client[api.UpdateGroupRequest, api.UpdateGroupResponse]
	deleteGroup      *connect.Client[api.DeleteGroupRequest, api.DeleteGroupResponse]
	addMember        *connect.Client[api.AddMemberRequest, api.AddMemberResponse]
	removeMember     *connect.Client[api.RemoveMemberRequest, api.RemoveMemberResponse]
	getGroupBalances *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
	getUserBalances  *connect.Client[api.GetUserBalancesRequest, api.GetUserBalancesResponse]
}

// NewGroupServiceClient constructs a client for the settleup.v1.GroupService service.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *GroupServiceClient {
	return &GroupServiceClient{
		createGroup:      newClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL, GroupServiceCreateGroupProcedure, opts),
		getGroup:         newClient[api.GetGroupRequest, api.GetGroupResponse](httpClient, baseURL, GroupServiceGetGroupProcedure, opts),
		listGroups:       newClient[api.ListGroupsRequest, api.ListGroupsResponse](httpClient, baseURL, GroupServiceListGroupsProcedure, opts),
		updateGroup:      newClient[api.UpdateGroupRequest, api.UpdateGroupResponse](httpClient, baseURL, GroupServiceUpdateGroupProcedure, opts),
		deleteGroup:      newClient[api.DeleteGroupRequest, api.DeleteGroupResponse](httpClient, baseURL, GroupServiceDeleteGroupProcedure, opts),
		addMember:        newClient[api.AddMemberRequest, api.AddMemberResponse](httpClient, baseURL, GroupServiceAddMemberProcedure, opts),
		removeMember:     newClient[api.RemoveMemberRequest, api.RemoveMemberResponse](httpClient, baseURL, GroupServiceRemoveMemberProcedure, opts),
		getGroupBalances: newClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL, GroupServiceGetGroupBalancesProcedure, opts),
		getUserBalances:  newClient[api.GetUserBalancesRequest, api.GetUserBalancesResponse](httpClient, baseURL, GroupServiceGetUserBalancesProcedure, opts),
	}
}

// CreateGroup calls GroupService.CreateGroup.
func (c *GroupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

// GetGroup calls GroupService.GetGroup.
func (c *GroupServiceClient) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	return c.getGroup.CallUnary(ctx, req)
}

// ListGroups calls GroupService.ListGroups.
func (c *GroupServiceClient) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	return c.listGroups.CallUnary(ctx, req)
}

// UpdateGroup calls GroupService.UpdateGroup.
func (c *GroupServiceClient) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	return c.updateGroup.CallUnary(ctx, req)
}

// DeleteGroup calls GroupService.DeleteGroup.
func (c *GroupServiceClient) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	return c.deleteGroup.CallUnary(ctx, req)
}

// AddMember calls GroupService.AddMember.
func (c *GroupServiceClient) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	return c.addMember.CallUnary(ctx, req)
}

// RemoveMember calls GroupService.RemoveMember.
func (c *GroupServiceClient) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	return c.removeMember.CallUnary(ctx, req)
}

// GetGroupBalances calls GroupService.GetGroupBalances.
func (c *GroupServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

// GetUserBalances calls GroupService.GetUserBalances.
func (c *GroupServiceClient) GetUserBalances(ctx context.Context, req *connect.Request[api.GetUserBalancesRequest]) (*connect.Response[api.GetUserBalancesResponse], error) {
	return c.getUserBalances.CallUnary(ctx, req)
}
