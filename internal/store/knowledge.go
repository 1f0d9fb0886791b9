package store

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-client/internal/domain"
)

// KnowledgeAPI is the part of the HTTP client the knowledge store uses
type KnowledgeAPI interface {
	ListDocuments(ctx context.Context) ([]domain.Document, error)
	UploadDocument(ctx context.Context, title, filename string, content io.Reader) (*domain.Document, error)
	DeleteDocument(ctx context.Context, id domain.ID) error
	DocumentDownloadURL(id domain.ID) string
	SearchDocuments(ctx context.Context, query domain.SearchQuery) ([]domain.SearchResult, error)
}

// Opener hands a URL to whatever can display or save it (a browser, a
// download manager)
type Opener interface {
	Open(url string) error
}

type DocumentsState struct {
	Documents []domain.Document
	Loading   bool
}

type SearchState struct {
	Query     string
	Results   []domain.SearchResult
	Searching bool
}

type KnowledgeStore struct {
	api         KnowledgeAPI
	opener      Opener
	searchLimit int

	documents *Observable[DocumentsState]
	search    *Observable[SearchState]

	mu        sync.Mutex
	listGen   uint64
	searchGen uint64
	inFlight  int
	pending   sync.WaitGroup
}

func NewKnowledgeStore(client KnowledgeAPI, opener Opener, searchLimit int) *KnowledgeStore {
	if searchLimit <= 0 {
		searchLimit = 5
	}
	return &KnowledgeStore{
		api:         client,
		opener:      opener,
		searchLimit: searchLimit,
		documents:   NewObservable(DocumentsState{Documents: []domain.Document{}}),
		search:      NewObservable(SearchState{Results: []domain.SearchResult{}}),
	}
}

func (s *KnowledgeStore) Documents() DocumentsState {
	return s.documents.Get()
}

func (s *KnowledgeStore) Search() SearchState {
	return s.search.Get()
}

func (s *KnowledgeStore) SubscribeDocuments(fn func(DocumentsState)) func() {
	return s.documents.Subscribe(fn)
}

func (s *KnowledgeStore) SubscribeSearch(fn func(SearchState)) func() {
	return s.search.Subscribe(fn)
}

// beginLoading and endLoading bracket every call that shows the documents
// loading flag; the flag stays set until the last of them finishes
func (s *KnowledgeStore) beginLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight++
	s.documents.Update(func(st DocumentsState) DocumentsState {
		st.Loading = true
		return st
	})
}

func (s *KnowledgeStore) endLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight--
	loading := s.inFlight > 0
	s.documents.Update(func(st DocumentsState) DocumentsState {
		st.Loading = loading
		return st
	})
}

// FetchDocuments replaces the list with the server's; failures are logged
// and leave the list untouched
func (s *KnowledgeStore) FetchDocuments(ctx context.Context) []domain.Document {
	s.mu.Lock()
	s.listGen++
	gen := s.listGen
	s.mu.Unlock()

	s.beginLoading()
	defer s.endLoading()

	docs, err := s.api.ListDocuments(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch documents")
		return s.documents.Get().Documents
	}
	if docs == nil {
		docs = []domain.Document{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.listGen {
		log.Debug().Msg("discarding stale document list")
		return docs
	}
	s.documents.Update(func(st DocumentsState) DocumentsState {
		st.Documents = docs
		return st
	})
	return docs
}

// UploadDocument uploads content and prepends the new document
func (s *KnowledgeStore) UploadDocument(ctx context.Context, title, filename string, content io.Reader) (*domain.Document, error) {
	s.beginLoading()
	defer s.endLoading()

	doc, err := s.api.UploadDocument(ctx, title, filename, content)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.listGen++
	s.documents.Update(func(st DocumentsState) DocumentsState {
		next := make([]domain.Document, 0, len(st.Documents)+1)
		st.Documents = append(append(next, *doc), st.Documents...)
		return st
	})
	return doc, nil
}

func (s *KnowledgeStore) DeleteDocument(ctx context.Context, id domain.ID) error {
	if err := s.api.DeleteDocument(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.listGen++
	s.documents.Update(func(st DocumentsState) DocumentsState {
		next := make([]domain.Document, 0, len(st.Documents))
		for _, d := range st.Documents {
			if d.ID != id {
				next = append(next, d)
			}
		}
		st.Documents = next
		return st
	})
	return nil
}

// DownloadDocument hands the download URL to the opener without waiting
func (s *KnowledgeStore) DownloadDocument(id domain.ID) {
	url := s.api.DocumentDownloadURL(id)
	if s.opener == nil {
		log.Warn().Str("document_id", id.String()).Msg("no opener configured, cannot download")
		return
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.opener.Open(url); err != nil {
			log.Error().Err(err).Str("document_id", id.String()).Msg("failed to open download")
		}
	}()
}

// Wait blocks until every download handed to the opener has been dispatched
func (s *KnowledgeStore) Wait() {
	s.pending.Wait()
}

// SearchDocuments runs a search and replaces the held results. A limit of
// zero or less uses the configured default. Failures are logged and yield
// no results.
func (s *KnowledgeStore) SearchDocuments(ctx context.Context, query string, limit int) []domain.SearchResult {
	if limit <= 0 {
		limit = s.searchLimit
	}
	q := domain.SearchQuery{Query: query, Limit: limit}
	if err := domain.Validate(q); err != nil {
		log.Warn().Err(err).Msg("invalid search")
		return []domain.SearchResult{}
	}

	s.mu.Lock()
	s.searchGen++
	gen := s.searchGen
	s.mu.Unlock()

	s.search.Update(func(st SearchState) SearchState {
		st.Query = query
		st.Searching = true
		return st
	})

	results, err := s.api.SearchDocuments(ctx, q)
	if err != nil {
		log.Error().Err(err).Str("query", query).Msg("search failed")
		results = []domain.SearchResult{}
	}
	if results == nil {
		results = []domain.SearchResult{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.searchGen {
		return results
	}
	s.search.Set(SearchState{Query: query, Results: results})
	return results
}

func (s *KnowledgeStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listGen++
	s.searchGen++
	s.documents.Set(DocumentsState{Documents: []domain.Document{}})
	s.search.Set(SearchState{Results: []domain.SearchResult{}})
}
