// Package messaging holds the direct-message core: the append-only message
// store, the sender that validates new messages and the conversation reader.
package messaging

import (
	"context"
	"strings"
	"time"

	"Homemade/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the durable, ordered record of direct messages.
type Store interface {
	// Append persists a new message and returns it with ID and Timestamp set.
	Append(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error)
	// Query returns every message between a and b, in either direction,
	// ordered by (timestamp, id). Argument order does not matter.
	Query(ctx context.Context, a, b uint) ([]models.Message, error)
}

type gormStore struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

// NewStore returns a Store backed by the messages table.
func NewStore(db *gorm.DB, log *zap.Logger) Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &gormStore{db: db, log: log.Named("message_store"), now: time.Now}
}

func (s *gormStore) Append(ctx context.Context, senderID, receiverID uint, content string) (*models.Message, error) {
	if senderID == 0 || receiverID == 0 {
		return nil, validationf("sender_id and receiver_id are required")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationf("content must not be blank")
	}

	low, high := models.PairKey(senderID, receiverID)
	msg := models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		PairLow:    low,
		PairHigh:   high,
		Content:    content,
	}

	// The pair's newest row is read under a row lock in the same transaction
	// as the insert, so appends to one pair serialize across server instances
	// and a timestamp never goes below the one before it.
	ts := s.now().UTC().Truncate(time.Millisecond)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest models.Message
		res := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "timestamp").
			Where("pair_low = ? AND pair_high = ?", low, high).
			Order("timestamp DESC").
			Order("id DESC").
			Limit(1).
			Find(&latest)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 && ts.Before(latest.Timestamp) {
			ts = latest.Timestamp.UTC()
		}
		msg.Timestamp = ts
		return tx.Omit(clause.Associations).Create(&msg).Error
	})
	if err != nil {
		s.log.Error("append failed",
			zap.Uint("sender_id", senderID), zap.Uint("receiver_id", receiverID), zap.Error(err))
		return nil, storageErr("append message", err)
	}
	return &msg, nil
}

func (s *gormStore) Query(ctx context.Context, a, b uint) ([]models.Message, error) {
	if a == 0 || b == 0 {
		return nil, validationf("both user ids are required")
	}
	low, high := models.PairKey(a, b)

	msgs := make([]models.Message, 0)
	err := s.db.WithContext(ctx).
		Where("pair_low = ? AND pair_high = ?", low, high).
		Order("timestamp ASC").
		Order("id ASC").
		Find(&msgs).Error
	if err != nil {
		s.log.Error("query failed", zap.Uint("user_a", a), zap.Uint("user_b", b), zap.Error(err))
		return nil, storageErr("query conversation", err)
	}
	return msgs, nil
}
