package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/pkg/api"
)

func TestNotifications(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := env.createGroup(t, env.alice, env.bob)
	env.createExpense(t, group.ID, env.alice, "20", env.alice, "10", env.bob, "10")

	// Bob was added to the group and told about the expense.
	resp, err := env.notifications.ListNotifications(ctx, as(env.bob, &api.ListNotificationsRequest{}))
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(resp.Msg.Notifications) != 2 || resp.Msg.UnreadCount != 2 {
		t.Fatalf("expected 2 unread notifications, got %d (unread %d)", len(resp.Msg.Notifications), resp.Msg.UnreadCount)
	}
	first := resp.Msg.Notifications[0]

	_, err = env.notifications.MarkNotificationRead(ctx, as(env.alice, &api.MarkNotificationReadRequest{NotificationID: first.ID}))
	assertCode(t, err, connect.CodeNotFound)

	marked, err := env.notifications.MarkNotificationRead(ctx, as(env.bob, &api.MarkNotificationReadRequest{NotificationID: first.ID}))
	if err != nil {
		t.Fatalf("MarkNotificationRead failed: %v", err)
	}
	if !marked.Msg.Notification.IsRead {
		t.Error("expected notification to be read")
	}

	unread, err := env.notifications.ListNotifications(ctx, as(env.bob, &api.ListNotificationsRequest{UnreadOnly: true}))
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(unread.Msg.Notifications) != 1 || unread.Msg.UnreadCount != 1 {
		t.Errorf("expected 1 unread notification, got %d (unread %d)", len(unread.Msg.Notifications), unread.Msg.UnreadCount)
	}
	if unread.Msg.Notifications[0].ID == first.ID {
		t.Error("the read notification must be filtered out")
	}

	all, err := env.notifications.ListNotifications(ctx, as(env.bob, &api.ListNotificationsRequest{}))
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(all.Msg.Notifications) != 2 {
		t.Errorf("expected 2 notifications in total, got %d", len(all.Msg.Notifications))
	}

	// Every stored notification is also pushed to the user's room.
	pushed := 0
	for _, e := range env.recorder.OfType(events.Notification) {
		if e.Room == env.bob {
			pushed++
		}
	}
	if pushed != 2 {
		t.Errorf("expected 2 notification events for bob, got %d", pushed)
	}

	empty, err := env.notifications.ListNotifications(ctx, as(env.dave, &api.ListNotificationsRequest{}))
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if empty.Msg.Notifications == nil || len(empty.Msg.Notifications) != 0 {
		t.Errorf("expected an empty list, got %+v", empty.Msg.Notifications)
	}
}

func TestNotifier_NilIsSafe(t *testing.T) {
	var n *Notifier
	n.Publish(context.Background(), events.GroupCreated, "room", nil)
	n.Notify(context.Background(), "general", "hello", "user")
}

func TestOthers(t *testing.T) {
	got := others([]string{"a", "b", "c", "b"}, "b")
	if len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("expected [a c], got %v", got)
	}
	if got := others([]string{"a"}, "a"); len(got) != 0 {
		t.Errorf("expected nothing, got %v", got)
	}
}
