package fakeapi

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/Rrens/chat-client/internal/api/response"
	"github.com/Rrens/chat-client/internal/domain"
)

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	owner := currentUser(r.Context())

	s.mu.Lock()
	projects := make([]domain.Project, 0, len(s.projects))
	for _, p := range s.projects {
		if p.owner == owner {
			projects = append(projects, p.Project)
		}
	}
	s.mu.Unlock()

	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt.Time)
	})
	response.OK(w, projects)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var input domain.ProjectCreate
	if !decodeAndValidate(w, r, &input) {
		return
	}

	now := domain.Now()
	p := &projectRecord{
		owner: currentUser(r.Context()),
		ProjectWithFiles: domain.ProjectWithFiles{
			Project: domain.Project{
				ID:          newID(),
				Title:       input.Title,
				Description: input.Description,
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			Files: []domain.ProjectFile{},
		},
	}

	s.mu.Lock()
	s.projects[p.ID] = p
	s.mu.Unlock()

	response.OK(w, p.Project)
}

// project returns the caller's project or writes 404. Callers hold s.mu.
func (s *Server) project(w http.ResponseWriter, r *http.Request) *projectRecord {
	p, ok := s.projects[domain.ID(chi.URLParam(r, "projectID"))]
	if !ok || p.owner != currentUser(r.Context()) {
		response.NotFound(w, "Project not found")
		return nil
	}
	return p
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(w, r)
	if p == nil {
		return
	}
	detail := p.ProjectWithFiles
	detail.Files = append([]domain.ProjectFile{}, p.Files...)
	response.OK(w, detail)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	var input domain.ProjectUpdate
	if !decodeAndValidate(w, r, &input) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(w, r)
	if p == nil {
		return
	}
	if input.Title != nil {
		p.Title = *input.Title
	}
	if input.Description != nil {
		p.Description = input.Description
	}
	if input.Instructions != nil {
		p.Instructions = input.Instructions
	}
	p.UpdatedAt = domain.Now()

	response.OK(w, p.Project)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(w, r)
	if p == nil {
		return
	}
	delete(s.projects, p.ID)
	response.Message(w, "Project deleted successfully")
}

func (s *Server) uploadProjectFile(w http.ResponseWriter, r *http.Request) {
	filename, content, ok := readUpload(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(w, r)
	if p == nil {
		return
	}

	f := domain.ProjectFile{
		ID:        newID(),
		ProjectID: p.ID,
		Filename:  filename,
		FileType:  fileType(filename),
		FileSize:  int64(len(content)),
		CreatedAt: domain.Now(),
	}
	p.Files = append(p.Files, f)
	p.UpdatedAt = f.CreatedAt

	response.OK(w, f)
}

func (s *Server) deleteProjectFile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.project(w, r)
	if p == nil {
		return
	}

	fileID := domain.ID(chi.URLParam(r, "fileID"))
	for i, f := range p.Files {
		if f.ID == fileID {
			p.Files = append(p.Files[:i:i], p.Files[i+1:]...)
			response.Message(w, "File deleted successfully")
			return
		}
	}
	response.NotFound(w, "File not found")
}
