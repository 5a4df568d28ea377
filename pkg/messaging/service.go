package messaging

import (
	"context"
	"strings"

	"Homemade/models"

	"go.uber.org/zap"
)

// SendRequest is a request to append one message. The caller's identity must
// already have been checked against SenderID.
type SendRequest struct {
	SenderID   uint
	ReceiverID uint
	Content    string
}

// Service is the entry point for the HTTP layer: Send validates and appends,
// Conversation reads the ordered history of a pair.
type Service struct {
	store     Store
	log       *zap.Logger
	allowSelf bool
}

type Option func(*Service)

// WithSelfMessages permits sender_id == receiver_id.
func WithSelfMessages(allow bool) Option {
	return func(s *Service) { s.allowSelf = allow }
}

func NewService(store Store, log *zap.Logger, opts ...Option) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{store: store, log: log.Named("messaging")}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Send validates req and appends it. Storage failures are returned as-is and
// never retried here; a resend could duplicate the message.
func (s *Service) Send(ctx context.Context, req SendRequest) (*models.Message, error) {
	if req.SenderID == 0 || req.ReceiverID == 0 {
		return nil, validationf("sender_id and receiver_id are required")
	}
	if strings.TrimSpace(req.Content) == "" {
		return nil, validationf("content must not be blank")
	}
	if req.SenderID == req.ReceiverID && !s.allowSelf {
		return nil, validationf("cannot send a message to yourself")
	}

	msg, err := s.store.Append(ctx, req.SenderID, req.ReceiverID, req.Content)
	if err != nil {
		return nil, err
	}
	s.log.Debug("message sent",
		zap.Uint("id", msg.ID), zap.Uint("sender_id", msg.SenderID), zap.Uint("receiver_id", msg.ReceiverID))
	return msg, nil
}

// Conversation returns the history between a and b. An empty conversation is
// an empty slice, not an error.
func (s *Service) Conversation(ctx context.Context, a, b uint) ([]models.Message, error) {
	if a == 0 || b == 0 {
		return nil, validationf("both user ids are required")
	}
	return s.store.Query(ctx, a, b)
}
