package store

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadThenFetchDocuments(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	var loading []bool
	e.stores.Knowledge.SubscribeDocuments(func(st DocumentsState) { loading = append(loading, st.Loading) })

	doc, err := e.stores.Knowledge.UploadDocument(ctx, "Quarterly report", "q3.pdf", strings.NewReader("numbers"))
	require.NoError(t, err)
	assert.Equal(t, "pdf", doc.Metadata.FileType)
	assert.Equal(t, []bool{false, true, true, false}, loading)

	held := e.stores.Knowledge.Documents().Documents
	require.Len(t, held, 1)
	assert.Equal(t, doc.ID, held[0].ID)

	docs := e.stores.Knowledge.FetchDocuments(ctx)
	require.Len(t, docs, 1)
	assert.Equal(t, "Quarterly report", docs[0].Title)
	assert.False(t, e.stores.Knowledge.Documents().Loading)
}

func TestUploadDocument_PrependsNewest(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	first, err := e.stores.Knowledge.UploadDocument(ctx, "first", "a.txt", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := e.stores.Knowledge.UploadDocument(ctx, "second", "b.txt", strings.NewReader("b"))
	require.NoError(t, err)

	held := e.stores.Knowledge.Documents().Documents
	require.Len(t, held, 2)
	assert.Equal(t, second.ID, held[0].ID)
	assert.Equal(t, first.ID, held[1].ID)
}

func TestUploadDocument_Failure(t *testing.T) {
	e := newEnv(t, true)
	e.srv.FailOn(http.MethodPost, "knowledge/documents", http.StatusRequestEntityTooLarge, "File too large")

	_, err := e.stores.Knowledge.UploadDocument(context.Background(), "big", "big.bin", nopReader{})
	require.Error(t, err)
	assert.Empty(t, e.stores.Knowledge.Documents().Documents)
	assert.False(t, e.stores.Knowledge.Documents().Loading)
}

func TestDeleteDocument(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	doc, err := e.stores.Knowledge.UploadDocument(ctx, "doc", "doc.txt", strings.NewReader("x"))
	require.NoError(t, err)

	e.srv.FailOn(http.MethodDelete, "knowledge/documents", http.StatusInternalServerError, "boom")
	require.Error(t, e.stores.Knowledge.DeleteDocument(ctx, doc.ID))
	assert.Len(t, e.stores.Knowledge.Documents().Documents, 1, "failed delete leaves the list")

	e.srv.ClearFailures()
	require.NoError(t, e.stores.Knowledge.DeleteDocument(ctx, doc.ID))
	assert.Empty(t, e.stores.Knowledge.Documents().Documents)
}

func TestFetchDocuments_FailureKeepsList(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	_, err := e.stores.Knowledge.UploadDocument(ctx, "doc", "doc.txt", strings.NewReader("x"))
	require.NoError(t, err)

	e.srv.FailOn(http.MethodGet, "knowledge/documents", http.StatusInternalServerError, "boom")
	docs := e.stores.Knowledge.FetchDocuments(ctx)
	assert.Len(t, docs, 1)
	assert.Len(t, e.stores.Knowledge.Documents().Documents, 1)
	assert.False(t, e.stores.Knowledge.Documents().Loading)
}

func TestSearchDocuments(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()

	_, err := e.stores.Knowledge.UploadDocument(ctx, "Langs", "langs.txt",
		strings.NewReader("Go has goroutines.\n\nRust has ownership.\n\nGo has channels."))
	require.NoError(t, err)

	var searching []bool
	e.stores.Knowledge.SubscribeSearch(func(st SearchState) { searching = append(searching, st.Searching) })

	results := e.stores.Knowledge.SearchDocuments(ctx, "go", 0)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, "Langs", r.DocumentTitle)
		assert.Contains(t, strings.ToLower(r.Chunk), "go")
	}
	assert.Equal(t, []bool{false, true, false}, searching)

	st := e.stores.Knowledge.Search()
	assert.Equal(t, "go", st.Query)
	assert.Len(t, st.Results, 2)

	limited := e.stores.Knowledge.SearchDocuments(ctx, "go", 1)
	assert.Len(t, limited, 1)

	// the document list is independent of search
	assert.Len(t, e.stores.Knowledge.Documents().Documents, 1)
}

func TestSearchDocuments_FailureYieldsEmpty(t *testing.T) {
	e := newEnv(t, true)
	e.srv.FailOn(http.MethodPost, "knowledge/search", http.StatusInternalServerError, "index offline")

	results := e.stores.Knowledge.SearchDocuments(context.Background(), "anything", 5)
	assert.Empty(t, results)
	assert.NotNil(t, results)
	assert.False(t, e.stores.Knowledge.Search().Searching)
}

func TestSearchDocuments_BlankQuery(t *testing.T) {
	e := newEnv(t, true)

	results := e.stores.Knowledge.SearchDocuments(context.Background(), "", 5)
	assert.Empty(t, results)
	assert.Equal(t, 0, e.countRequests("POST /api/knowledge/search"))
}

func TestDownloadDocument_HandsURLToOpener(t *testing.T) {
	e := newEnv(t, true)

	opener := new(MockOpener)
	url := e.client.DocumentDownloadURL("d1")
	require.True(t, strings.HasSuffix(url, "/api/knowledge/documents/d1/download"))
	opener.On("Open", url).Return(errors.New("no browser")).Once()

	s := NewKnowledgeStore(e.client, opener, 5)

	s.DownloadDocument("d1")
	s.Wait()

	opener.AssertExpectations(t)
}

func TestDocumentsLoading_OverlappingCalls(t *testing.T) {
	e := newEnv(t, true)
	ctx := context.Background()
	s := e.stores.Knowledge

	entered := make(chan struct{})
	release := make(chan struct{})
	e.srv.OnRequest(func(r *http.Request) {
		if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/knowledge/documents") {
			close(entered)
			<-release
		}
	})

	done := make(chan error, 1)
	go func() {
		_, err := s.UploadDocument(ctx, "doc", "doc.txt", strings.NewReader("x"))
		done <- err
	}()

	<-entered
	s.FetchDocuments(ctx)
	assert.True(t, s.Documents().Loading, "upload still running")

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.Documents().Loading)
	assert.Len(t, s.Documents().Documents, 1)
}
