package model

import "time"

// Notification kinds recorded in the delivery log.
const (
	NotifUnclaimedDigest = "unclaimed_digest"
	NotifDueTomorrow     = "due_tomorrow"
)

type PushSubscription struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	FamilyID   int64     `json:"family_id"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dh_key"`
	AuthKey    string    `json:"auth_key"`
	DeviceName string    `json:"device_name"`
	CreatedAt  time.Time `json:"created_at"`
}
