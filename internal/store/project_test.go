package store

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/chat-client/internal/domain"
)

func TestProjectLifecycle(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	s := e.stores.Projects

	desc := "Master thesis"
	p, err := s.CreateProject(ctx, "Thesis", &desc)
	require.NoError(t, err)
	other, err := s.CreateProject(ctx, "Side project", nil)
	require.NoError(t, err)

	st := s.State()
	require.Len(t, st.Projects, 2)
	assert.Equal(t, other.ID, st.Projects[0].ID)
	assert.Nil(t, st.Current)

	detail, err := s.FetchProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Files)
	require.NotNil(t, s.State().Current)
	assert.False(t, s.State().Loading)

	title := "Thesis v2"
	_, err = s.UpdateProject(ctx, p.ID, domain.ProjectUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Thesis v2", s.State().Current.Title)
	assert.Equal(t, "Thesis v2", s.State().Projects[1].Title)

	f, err := s.UploadFile(ctx, p.ID, "outline.md", strings.NewReader("# outline"))
	require.NoError(t, err)
	require.Len(t, s.State().Current.Files, 1)
	assert.Equal(t, "md", s.State().Current.Files[0].FileType)

	require.NoError(t, s.DeleteFile(ctx, p.ID, f.ID))
	assert.Empty(t, s.State().Current.Files)

	require.NoError(t, s.DeleteProject(ctx, p.ID))
	st = s.State()
	assert.Nil(t, st.Current)
	require.Len(t, st.Projects, 1)
	assert.Equal(t, other.ID, st.Projects[0].ID)

	projects := s.FetchProjects(ctx)
	require.Len(t, projects, 1)
}

func TestProjectStore_Validation(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	_, err := e.stores.Projects.CreateProject(ctx, "", nil)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	empty := ""
	_, err = e.stores.Projects.UpdateProject(ctx, "p1", domain.ProjectUpdate{Title: &empty})
	require.ErrorAs(t, err, &verr)

	assert.Equal(t, 0, e.countRequests("POST /api/project"))
}

func TestFetchProjects_FailureKeepsList(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	_, err := e.stores.Projects.CreateProject(ctx, "Thesis", nil)
	require.NoError(t, err)

	e.srv.FailOn(http.MethodGet, "project", http.StatusInternalServerError, "boom")
	assert.Len(t, e.stores.Projects.FetchProjects(ctx), 1)
	assert.Len(t, e.stores.Projects.State().Projects, 1)
}
