package store

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/chat-client/internal/domain"
)

func TestBootstrap_NotAuthenticated(t *testing.T) {
	e := newEnv(t, false)

	err := e.stores.Bootstrap(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Empty(t, e.srv.Requests())
}

func TestBootstrap_LoadsEverything(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()

	token := e.srv.IssueToken(e.user.ID)
	require.NoError(t, e.tokens.Save(ctx, token))

	_, err := e.client.CreateChat(ctx, domain.ChatCreate{Title: "one", Model: testModel})
	require.NoError(t, err)
	_, err = e.client.UploadDocument(ctx, "doc", "doc.txt", strings.NewReader("x"))
	require.NoError(t, err)
	_, err = e.client.CreateProject(ctx, domain.ProjectCreate{Title: "Thesis"})
	require.NoError(t, err)

	require.NoError(t, e.stores.Bootstrap(ctx))

	assert.True(t, e.stores.Auth.State().Authenticated)
	assert.Len(t, e.stores.Chat.Chats(), 1)
	assert.Len(t, e.stores.Models.Models(), 2)
	assert.Len(t, e.stores.Knowledge.Documents().Documents, 1)
	assert.Len(t, e.stores.Projects.State().Projects, 1)
}

func TestLogout_ResetsUserState(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	_, err := e.stores.Chat.CreateChat(ctx, "", nil)
	require.NoError(t, err)
	_, err = e.stores.Knowledge.UploadDocument(ctx, "doc", "doc.txt", strings.NewReader("x"))
	require.NoError(t, err)
	require.Len(t, e.stores.Models.FetchModels(ctx), 2)
	require.NoError(t, e.stores.Models.SelectModel("gemini-1.5-flash"))

	e.stores.Auth.Logout(ctx)

	assert.Empty(t, e.stores.Chat.Chats())
	assert.True(t, e.stores.Chat.Current().IsZero())
	assert.Empty(t, e.stores.Knowledge.Documents().Documents)
	assert.Empty(t, e.stores.Models.Models())
	assert.Equal(t, testModel, e.stores.Models.SelectedModel())
}
