// Package notify is the outbound notification sink. Everything here is
// best-effort and decoupled from the scheduling transaction: a failed
// delivery is logged and dropped, never propagated back to the state
// transition that triggered it.
package notify

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/store"
	"github.com/IsukaW/Urban-Cleanse-sub001/internal/websocket"
)

// pushTimeout bounds the FCM leg so a slow push can never hold a worker.
const pushTimeout = 5 * time.Second

// Notifier fans one event out to the stored notification feed, the
// websocket hub and (when configured) FCM push.
type Notifier struct {
	store store.NotificationStore
	hub   *websocket.Hub
	fcm   *FCM // nil when push is not configured
}

// New creates a Notifier. hub and fcm may be nil; the stored feed always works.
func New(s store.NotificationStore, hub *websocket.Hub, fcm *FCM) *Notifier {
	return &Notifier{store: s, hub: hub, fcm: fcm}
}

// Publish records and delivers one notification. It never returns an error:
// the scheduling path must not block or fail on delivery trouble.
func (n *Notifier) Publish(userID, typ, title, message, relatedID string) {
	notification := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		RelatedID: relatedID,
		CreatedAt: time.Now().Unix(),
	}

	if err := n.store.CreateNotification(notification); err != nil {
		log.Printf("⚠️  Failed to store notification for %s: %v", userID, err)
	}

	if n.hub != nil {
		n.hub.BroadcastToUser(userID, map[string]interface{}{
			"type": "notification",
			"data": notification,
		})
	}

	if n.fcm != nil {
		go n.push(userID, title, message, typ, relatedID)
	}
}

// PublishToRole delivers one event to every user holding a role (e.g.
// new-request announcements to operators).
func (n *Notifier) PublishToRole(users []models.User, typ, title, message, relatedID string) {
	for _, u := range users {
		n.Publish(u.ID, typ, title, message, relatedID)
	}
}

func (n *Notifier) push(userID, title, body, typ, relatedID string) {
	token, err := n.store.LatestFCMToken(userID)
	if err != nil {
		// No registered device is the common case, not an error worth noise.
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	defer cancel()

	err = n.fcm.Send(ctx, token, title, body, map[string]string{
		"type":       typ,
		"related_id": relatedID,
	})
	if err != nil {
		log.Printf("⚠️  Failed to send FCM notification to %s: %v", userID, err)
		return
	}
	log.Printf("✅ FCM notification sent to %s", userID)
}
