// Package domain defines the core persistence models for the application.
// This file holds the chat receipt model used for safe-retry semantics on
// chat sends.
package domain

import "time"

// ChatReceipt records a completed chat turn keyed by (user_id, key), where
// key is the client-chosen X-Chat-Key value. It lets a client retry a send
// after a network hiccup and be served the originally produced turn instead
// of issuing (and billing) a second provider call.
type ChatReceipt struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_chat_receipt,priority:1"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_chat_receipt,priority:2"`
	Turn      []byte    `gorm:"type:blob"` // JSON-encoded ChatTurn
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (ChatReceipt) TableName() string { return "chat_receipts" }
