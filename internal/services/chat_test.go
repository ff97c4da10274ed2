package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenOrCreateChatIsStable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	chat, err := f.chats.OpenOrCreateChat(ctx, alice.ID.String(), "bob")
	require.NoError(t, err)
	require.Len(t, f.store.chats, 1)

	// Opening again, from either side, returns the same chat.
	again, err := f.chats.OpenOrCreateChat(ctx, alice.ID.String(), "bob")
	require.NoError(t, err)
	assert.Equal(t, chat.ID, again.ID)

	fromBob, err := f.chats.OpenOrCreateChat(ctx, bob.ID.String(), "alice")
	require.NoError(t, err)
	assert.Equal(t, chat.ID, fromBob.ID)

	assert.Len(t, f.store.chats, 1)
}

func TestOpenOrCreateChatUnknownPartner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")

	_, err := f.chats.OpenOrCreateChat(ctx, alice.ID.String(), "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, f.store.chats)
}

func TestSendMessage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.register(t, "bob")

	chat, err := f.chats.OpenOrCreateChat(ctx, alice.ID.String(), "bob")
	require.NoError(t, err)

	message, err := f.chats.SendMessage(ctx, alice.ID.String(), &SendMessageRequest{
		ChatID:  chat.ID.String(),
		Content: "hello bob",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello bob", message.Content)
	assert.Equal(t, "alice", message.Sender.Username)
	assert.False(t, message.CreatedAt.IsZero())
}

func TestSendMessageValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.register(t, "bob")
	carol := f.register(t, "carol")

	chat, err := f.chats.OpenOrCreateChat(ctx, alice.ID.String(), "bob")
	require.NoError(t, err)

	_, err = f.chats.SendMessage(ctx, alice.ID.String(), &SendMessageRequest{
		ChatID: chat.ID.String(),
	})
	assert.ErrorIs(t, err, ErrContentRequired)

	// Only participants may write to a chat.
	_, err = f.chats.SendMessage(ctx, carol.ID.String(), &SendMessageRequest{
		ChatID:  chat.ID.String(),
		Content: "let me in",
	})
	assert.ErrorIs(t, err, ErrNotParticipant)

	assert.Empty(t, f.store.messages)
}

func TestLoadMessagesAscending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	chat, err := f.chats.OpenOrCreateChat(ctx, alice.ID.String(), "bob")
	require.NoError(t, err)

	turns := []struct {
		sender  string
		content string
	}{
		{alice.ID.String(), "hi"},
		{bob.ID.String(), "hey"},
		{alice.ID.String(), "how are you"},
	}
	for _, turn := range turns {
		_, err := f.chats.SendMessage(ctx, turn.sender, &SendMessageRequest{
			ChatID:  chat.ID.String(),
			Content: turn.content,
		})
		require.NoError(t, err)
	}

	messages, err := f.chats.LoadMessages(ctx, chat.ID.String())
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "hi", messages[0].Content)
	assert.Equal(t, "hey", messages[1].Content)
	assert.Equal(t, "how are you", messages[2].Content)
	assert.True(t, messages[0].CreatedAt.Before(messages[2].CreatedAt))
}

func TestLoadMessagesUnknownChat(t *testing.T) {
	f := newFixture()
	alice := f.register(t, "alice")

	_, err := f.chats.LoadMessages(context.Background(), alice.ID.String())
	assert.ErrorIs(t, err, ErrChatNotFound)
}

func TestPartnersDeduplicates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	alice := f.register(t, "alice")
	f.register(t, "bob")
	f.register(t, "carol")

	_, err := f.chats.OpenOrCreateChat(ctx, alice.ID.String(), "bob")
	require.NoError(t, err)
	_, err = f.chats.OpenOrCreateChat(ctx, alice.ID.String(), "carol")
	require.NoError(t, err)
	// Re-opening an existing chat must not add a duplicate partner.
	_, err = f.chats.OpenOrCreateChat(ctx, alice.ID.String(), "bob")
	require.NoError(t, err)

	partners, err := f.chats.Partners(ctx, alice.ID.String())
	require.NoError(t, err)
	require.Len(t, partners, 2)

	names := []string{partners[0].Username, partners[1].Username}
	assert.ElementsMatch(t, []string{"bob", "carol"}, names)
}
