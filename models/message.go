package models

import (
	"time"
)

// Message is a direct message from SenderID to ReceiverID. Messages are
// append-only: nothing updates or deletes a row once written.
//
// PairLow/PairHigh hold the participants in ascending order so both
// directions of a conversation share one composite index.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	SenderID   uint      `gorm:"not null;index" json:"sender_id"`
	ReceiverID uint      `gorm:"not null;index" json:"receiver_id"`
	PairLow    uint      `gorm:"not null;index:idx_messages_pair,priority:1" json:"-"`
	PairHigh   uint      `gorm:"not null;index:idx_messages_pair,priority:2" json:"-"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Timestamp  time.Time `gorm:"not null;index:idx_messages_pair,priority:3" json:"timestamp"`

	Sender   User `gorm:"foreignKey:SenderID" json:"-"`
	Receiver User `gorm:"foreignKey:ReceiverID" json:"-"`
}

// PairKey returns the participants of a conversation in canonical order.
func PairKey(a, b uint) (low, high uint) {
	if a <= b {
		return a, b
	}
	return b, a
}
