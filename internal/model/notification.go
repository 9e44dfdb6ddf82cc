package model

import "gorm.io/datatypes"

type NotificationChannel string

const (
	ChannelSMS   NotificationChannel = "sms"
	ChannelEmail NotificationChannel = "email"
)

type DeliveryStatus string

const (
	DeliverySent    DeliveryStatus = "sent"
	DeliverySkipped DeliveryStatus = "skipped"
	DeliveryFailed  DeliveryStatus = "failed"
)

// notification_logs: one row per channel per delivered event.
type NotificationLog struct {
	Base

	Event     string              `gorm:"type:varchar(64);not null;index" json:"event"`
	Channel   NotificationChannel `gorm:"type:varchar(8);not null" json:"channel"`
	Recipient string              `gorm:"type:varchar(254)" json:"recipient"`
	Status    DeliveryStatus      `gorm:"type:varchar(8);not null" json:"status"`
	Error     string              `gorm:"type:text" json:"error,omitempty"`
	Payload   datatypes.JSON      `json:"payload"`
}
