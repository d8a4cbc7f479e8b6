package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// NotificationServiceName is the fully-qualified name of the NotificationService service.
const NotificationServiceName = "settleup.v1.NotificationService"

const (
	NotificationServiceListNotificationsProcedure    = "/settleup.v1.NotificationService/ListNotifications"
	NotificationServiceMarkNotificationReadProcedure = "/settleup.v1.NotificationService/MarkNotificationRead"
)

// NotificationServiceHandler is implemented by the server.
type NotificationServiceHandler interface {
	ListNotifications(context.Context, *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error)
	MarkNotificationRead(context.Context, *connect.Request[api.MarkNotificationReadRequest]) (*connect.Response[api.MarkNotificationReadResponse], error)
}

// NewNotificationServiceHandler builds an HTTP handler from the service implementation.
func NewNotificationServiceHandler(svc NotificationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return route(NotificationServiceName, map[string]http.Handler{
		NotificationServiceListNotificationsProcedure:    newHandler(NotificationServiceListNotificationsProcedure, svc.ListNotifications, opts),
		NotificationServiceMarkNotificationReadProcedure: newHandler(NotificationServiceMarkNotificationReadProcedure, svc.MarkNotificationRead, opts),
	})
}

// NotificationServiceClient is a client for the settleup.v1.NotificationService service.
type NotificationServiceClient struct {
	listNotifications    *connect.Client[api.ListNotificationsRequest, api.ListNotificationsResponse]
	markNotificationRead *connect.Client[api.MarkNotificationReadRequest, api.MarkNotificationReadResponse]
}

// NewNotificationServiceClient constructs a client for the settleup.v1.NotificationService service.
func NewNotificationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *NotificationServiceClient {
	return &NotificationServiceClient{
		listNotifications:    newClient[api.ListNotificationsRequest, api.ListNotificationsResponse](httpClient, baseURL, NotificationServiceListNotificationsProcedure, opts),
		markNotificationRead: newClient[api.MarkNotificationReadRequest, api.MarkNotificationReadResponse](httpClient, baseURL, NotificationServiceMarkNotificationReadProcedure, opts),
	}
}

// ListNotifications calls NotificationService.ListNotifications.
func (c *NotificationServiceClient) ListNotifications(ctx context.Context, req *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error) {
	return c.listNotifications.CallUnary(ctx, req)
}

// MarkNotificationRead calls NotificationService.MarkNotificationRead.
func (c *NotificationServiceClient) MarkNotificationRead(ctx context.Context, req *connect.Request[api.MarkNotificationReadRequest]) (*connect.Response[api.MarkNotificationReadResponse], error) {
	return c.markNotificationRead.CallUnary(ctx, req)
}
