package usecase

import (
	"context"
	"testing"

	"fanvault/pkg/apperror"
	"fanvault/pkg/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *env) messaging() MessagingUseCase {
	return NewMessagingUseCase(e.store, e.publisher, e.log, WithClock(e.clock.Now))
}

func TestConversationFlow(t *testing.T) {
	e := newEnv(t)
	uc := e.messaging()
	ctx := context.Background()

	conv, err := uc.StartConversation(ctx, e.supporter.ID, e.creator.UserID)
	require.NoError(t, err)

	again, err := uc.StartConversation(ctx, e.creator.UserID, e.supporter.ID)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, again.ID)

	_, err = uc.SendMessage(ctx, e.supporter.ID, conv.ID, "hello")
	require.NoError(t, err)
	_, err = uc.SendMessage(ctx, e.supporter.ID, conv.ID, "are you there?")
	require.NoError(t, err)

	msgs, err := uc.ListMessages(ctx, e.creator.UserID, conv.ID, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, "are you there?", msgs[1].Content)

	msgs, err = uc.ListMessages(ctx, e.creator.UserID, conv.ID, 0)
	require.NoError(t, err)
	for _, m := range msgs {
		assert.True(t, m.Read)
	}

	latest, err := uc.ListMessages(ctx, e.supporter.ID, conv.ID, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "are you there?", latest[0].Content)

	convs, err := uc.ListConversations(ctx, e.creator.UserID)
	require.NoError(t, err)
	assert.Len(t, convs, 1)

	assert.Equal(t, []string{queue.EventMessageCreated, queue.EventMessageCreated}, e.publisher.Types())
}

func TestConversation_Rejections(t *testing.T) {
	e := newEnv(t)
	uc := e.messaging()
	ctx := context.Background()

	_, err := uc.StartConversation(ctx, e.supporter.ID, e.supporter.ID)
	assert.True(t, apperror.Is(err, apperror.ValidationError))

	_, err = uc.StartConversation(ctx, e.supporter.ID, "missing")
	assert.True(t, apperror.Is(err, apperror.NotFound))

	conv, err := uc.StartConversation(ctx, e.supporter.ID, e.creator.UserID)
	require.NoError(t, err)

	outsider := newUser(t, e.store, "outsider@example.com")
	_, err = uc.SendMessage(ctx, outsider.ID, conv.ID, "hi")
	assert.True(t, apperror.Is(err, apperror.AccessDenied))
	_, err = uc.ListMessages(ctx, outsider.ID, conv.ID, 10)
	assert.True(t, apperror.Is(err, apperror.AccessDenied))

	_, err = uc.SendMessage(ctx, e.supporter.ID, conv.ID, "   ")
	assert.True(t, apperror.Is(err, apperror.ValidationError))
}
