package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fanvault/pkg/apperror"
	"fanvault/pkg/logger"
	"fanvault/pkg/queue"
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/repo"
)

const defaultMessagePage = 50

type MessagingUseCase interface {
	StartConversation(ctx context.Context, userID, otherUserID string) (*entity.Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*entity.Conversation, error)
	ListMessages(ctx context.Context, userID, conversationID string, limit int) ([]*entity.Message, error)
	SendMessage(ctx context.Context, userID, conversationID, content string) (*entity.Message, error)
}

type messagingUseCase struct {
	store     repo.Store
	publisher EventPublisher
	logger    *logger.Logger
	now       func() time.Time
}

func NewMessagingUseCase(store repo.Store, publisher EventPublisher, logger *logger.Logger, opts ...Option) MessagingUseCase {
	o := buildOptions(opts)
	return &messagingUseCase{store: store, publisher: publisher, logger: logger, now: o.now}
}

// StartConversation returns the existing thread between the two users or
// opens one.
func (uc *messagingUseCase) StartConversation(ctx context.Context, userID, otherUserID string) (*entity.Conversation, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	if otherUserID == "" || otherUserID == userID {
		return nil, invalid("a conversation needs another participant")
	}
	if _, err := uc.store.GetUser(ctx, otherUserID); err != nil {
		return nil, lookup(err, "User")
	}

	conv, err := uc.store.GetConversationBetween(ctx, userID, otherUserID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	conv = &entity.Conversation{ParticipantA: userID, ParticipantB: otherUserID, LastMessageAt: uc.now().UTC()}
	if err := uc.store.CreateConversation(ctx, conv); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			existing, err := uc.store.GetConversationBetween(ctx, userID, otherUserID)
			return existing, lookup(err, "Conversation")
		}
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

func (uc *messagingUseCase) ListConversations(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}

	convs, err := uc.store.ListConversationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return convs, nil
}

func (uc *messagingUseCase) participantConversation(ctx context.Context, store repo.ConversationRepository, userID, conversationID string) (*entity.Conversation, error) {
	conv, err := store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, lookup(err, "Conversation")
	}
	if !conv.HasParticipant(userID) {
		return nil, apperror.New(apperror.AccessDenied, "You are not part of this conversation")
	}
	return conv, nil
}

// ListMessages returns the latest messages and marks the other side's
// messages as read by the caller.
func (uc *messagingUseCase) ListMessages(ctx context.Context, userID, conversationID string, limit int) ([]*entity.Message, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = defaultMessagePage
	}

	if _, err := uc.participantConversation(ctx, uc.store, userID, conversationID); err != nil {
		return nil, err
	}

	msgs, err := uc.store.ListMessages(ctx, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if err := uc.store.MarkMessagesRead(ctx, conversationID, userID); err != nil {
		uc.logger.Warn("Failed to mark conversation %s read: %v", conversationID, err)
	}
	return msgs, nil
}

func (uc *messagingUseCase) SendMessage(ctx context.Context, userID, conversationID, content string) (*entity.Message, error) {
	if err := requireViewer(userID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, invalid("message content is required")
	}

	var msg *entity.Message
	var recipient string
	err := uc.store.WithTx(ctx, func(tx repo.Store) error {
		conv, err := uc.participantConversation(ctx, tx, userID, conversationID)
		if err != nil {
			return err
		}

		msg = &entity.Message{ConversationID: conv.ID, SenderID: userID, Content: content, CreatedAt: uc.now().UTC()}
		if err := tx.CreateMessage(ctx, msg); err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		conv.LastMessageAt = msg.CreatedAt
		if err := tx.UpdateConversation(ctx, conv); err != nil {
			return fmt.Errorf("failed to update conversation: %w", err)
		}

		recipient = conv.ParticipantA
		if recipient == userID {
			recipient = conv.ParticipantB
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	publish(uc.publisher, uc.logger, queue.Event{
		Type:       queue.EventMessageCreated,
		ActorID:    userID,
		CreatorID:  recipient,
		SubjectID:  msg.ID,
		Priority:   1,
		OccurredAt: msg.CreatedAt,
	})
	return msg, nil
}
