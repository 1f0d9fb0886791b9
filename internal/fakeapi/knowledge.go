package fakeapi

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Rrens/chat-client/internal/api/response"
	"github.com/Rrens/chat-client/internal/domain"
)

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r.Context())

	s.mu.Lock()
	docs := make([]domain.Document, 0, len(s.documents))
	for _, d := range s.documents {
		if d.owner == owner {
			docs = append(docs, d.Document)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt.Time)
	})
	response.OK(w, docs)
}

// readUpload returns the "file" part of a multipart request
func readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		response.BadRequest(w, "invalid multipart body")
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.UnprocessableEntity(w, []fieldError{{
			Loc:  []string{"body", "file"},
			Msg:  "field required",
			Type: "value_error.missing",
		}})
		return "", nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(w, "failed to read file")
		return "", nil, false
	}
	return header.Filename, content, true
}

func fileType(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request) {
	filename, content, ok := readUpload(w, r)
	if !ok {
		return
	}

	title := r.FormValue("title")
	if title == "" {
		title = filename
	}

	now := domain.Now()
	d := &documentRecord{
		owner: currentUser(r.Context()),
		Document: domain.Document{
			ID:    newID(),
			Title: title,
			Metadata: domain.DocumentMetadata{
				FileName: filename,
				FileType: fileType(filename),
				FileSize: int64(len(content)),
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		content: content,
	}

	s.mu.Lock()
	s.documents[d.ID] = d
	s.mu.Unlock()

	response.OK(w, d.Document)
}

// document returns the caller's document or writes 404. Callers hold s.mu.
func (s *Server) document(w http.ResponseWriter, r *http.Request) *documentRecord {
	d, ok := s.documents[domain.ID(chi.URLParam(r, "documentID"))]
	if !ok || d.owner != currentUser(r.Context()) {
		response.NotFound(w, "Document not found")
		return nil
	}
	return d
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.document(w, r)
	if d == nil {
		return
	}
	delete(s.documents, d.ID)
	response.Message(w, "Document deleted successfully")
}

func (s *Server) downloadDocument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	d := s.document(w, r)
	s.mu.Unlock()
	if d == nil {
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Metadata.FileName))
	w.Header().Set("Content-Length", fmt.Sprint(len(d.content)))
	w.WriteHeader(http.StatusOK)
	w.Write(d.content)
}

// search scores each paragraph of each document by the share of query terms
// it contains
func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	var input domain.SearchQuery
	if !decodeAndValidate(w, r, &input) {
		return
	}

	terms := strings.Fields(strings.ToLower(input.Query))
	owner := currentUser(r.Context())

	s.mu.Lock()
	var results []domain.SearchResult
	for _, d := range s.documents {
		if d.owner != owner {
			continue
		}
		for _, chunk := range strings.Split(string(d.content), "\n\n") {
			chunk = strings.TrimSpace(chunk)
			if chunk == "" {
				continue
			}
			lower := strings.ToLower(chunk)
			hits := 0
			for _, term := range terms {
				if strings.Contains(lower, term) {
					hits++
				}
			}
			if hits == 0 {
				continue
			}
			results = append(results, domain.SearchResult{
				Chunk:          chunk,
				DocumentID:     d.ID,
				DocumentTitle:  d.Title,
				RelevanceScore: float64(hits) / float64(len(terms)),
			})
		}
	}
	s.mu.Unlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	if len(results) > input.Limit {
		results = results[:input.Limit]
	}
	if results == nil {
		results = []domain.SearchResult{}
	}
	response.OK(w, results)
}
