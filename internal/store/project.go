package store

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Rrens/chat-client/internal/domain"
)

// ProjectAPI is the part of the HTTP client the project store uses
type ProjectAPI interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	GetProject(ctx context.Context, id domain.ID) (*domain.ProjectWithFiles, error)
	CreateProject(ctx context.Context, input domain.ProjectCreate) (*domain.Project, error)
	UpdateProject(ctx context.Context, id domain.ID, input domain.ProjectUpdate) (*domain.Project, error)
	DeleteProject(ctx context.Context, id domain.ID) error
	UploadProjectFile(ctx context.Context, projectID domain.ID, filename string, content io.Reader) (*domain.ProjectFile, error)
	DeleteProjectFile(ctx context.Context, projectID, fileID domain.ID) error
}

type ProjectState struct {
	Projects []domain.Project
	// Current is nil until a project is opened
	Current *domain.ProjectWithFiles
	Loading bool
}

type ProjectStore struct {
	api   ProjectAPI
	state *Observable[ProjectState]

	mu      sync.Mutex
	listGen uint64
	curGen  uint64
}

func NewProjectStore(client ProjectAPI) *ProjectStore {
	return &ProjectStore{
		api:   client,
		state: NewObservable(ProjectState{Projects: []domain.Project{}}),
	}
}

func (s *ProjectStore) State() ProjectState {
	return s.state.Get()
}

func (s *ProjectStore) Subscribe(fn func(ProjectState)) func() {
	return s.state.Subscribe(fn)
}

// FetchProjects replaces the list; failures are logged and keep the list
func (s *ProjectStore) FetchProjects(ctx context.Context) []domain.Project {
	s.mu.Lock()
	s.listGen++
	gen := s.listGen
	s.mu.Unlock()

	projects, err := s.api.ListProjects(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to fetch projects")
		return s.state.Get().Projects
	}
	if projects == nil {
		projects = []domain.Project{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.listGen {
		return projects
	}
	s.state.Update(func(st ProjectState) ProjectState {
		st.Projects = projects
		return st
	})
	return projects
}

// FetchProject makes the project with its files current
func (s *ProjectStore) FetchProject(ctx context.Context, id domain.ID) (*domain.ProjectWithFiles, error) {
	s.mu.Lock()
	s.curGen++
	gen := s.curGen
	s.state.Update(func(st ProjectState) ProjectState {
		st.Loading = true
		return st
	})
	s.mu.Unlock()

	project, err := s.api.GetProject(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.curGen {
		log.Debug().Str("project_id", id.String()).Msg("discarding stale project")
		return project, err
	}
	s.state.Update(func(st ProjectState) ProjectState {
		st.Loading = false
		if err == nil {
			st.Current = project
		}
		return st
	})
	return project, err
}

func (s *ProjectStore) CreateProject(ctx context.Context, title string, description *string) (*domain.Project, error) {
	input := domain.ProjectCreate{Title: title, Description: description}
	if err := domain.Validate(input); err != nil {
		return nil, err
	}

	project, err := s.api.CreateProject(ctx, input)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.listGen++
	s.state.Update(func(st ProjectState) ProjectState {
		next := make([]domain.Project, 0, len(st.Projects)+1)
		st.Projects = append(append(next, *project), st.Projects...)
		return st
	})
	return project, nil
}

// UpdateProject replaces the project in the list and, if open, in Current
func (s *ProjectStore) UpdateProject(ctx context.Context, id domain.ID, update domain.ProjectUpdate) (*domain.Project, error) {
	if err := domain.Validate(update); err != nil {
		return nil, err
	}

	project, err := s.api.UpdateProject(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.listGen++
	s.state.Update(func(st ProjectState) ProjectState {
		next := make([]domain.Project, 0, len(st.Projects))
		for _, p := range st.Projects {
			if p.ID == id {
				p = *project
			}
			next = append(next, p)
		}
		st.Projects = next

		if st.Current != nil && st.Current.ID == id {
			st.Current = &domain.ProjectWithFiles{Project: *project, Files: st.Current.Files}
		}
		return st
	})
	return project, nil
}

func (s *ProjectStore) DeleteProject(ctx context.Context, id domain.ID) error {
	if err := s.api.DeleteProject(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.listGen++
	if cur := s.state.Get().Current; cur != nil && cur.ID == id {
		s.curGen++
	}
	s.state.Update(func(st ProjectState) ProjectState {
		next := make([]domain.Project, 0, len(st.Projects))
		for _, p := range st.Projects {
			if p.ID != id {
				next = append(next, p)
			}
		}
		st.Projects = next

		if st.Current != nil && st.Current.ID == id {
			st.Current = nil
			st.Loading = false
		}
		return st
	})
	return nil
}

// UploadFile attaches a file; it is appended to Current when that project is open
func (s *ProjectStore) UploadFile(ctx context.Context, projectID domain.ID, filename string, content io.Reader) (*domain.ProjectFile, error) {
	file, err := s.api.UploadProjectFile(ctx, projectID, filename, content)
	if err != nil {
		return nil, err
	}

	s.updateCurrentFiles(projectID, func(files []domain.ProjectFile) []domain.ProjectFile {
		next := make([]domain.ProjectFile, 0, len(files)+1)
		return append(append(next, files...), *file)
	})
	return file, nil
}

func (s *ProjectStore) DeleteFile(ctx context.Context, projectID, fileID domain.ID) error {
	if err := s.api.DeleteProjectFile(ctx, projectID, fileID); err != nil {
		return err
	}

	s.updateCurrentFiles(projectID, func(files []domain.ProjectFile) []domain.ProjectFile {
		next := make([]domain.ProjectFile, 0, len(files))
		for _, f := range files {
			if f.ID != fileID {
				next = append(next, f)
			}
		}
		return next
	})
	return nil
}

func (s *ProjectStore) updateCurrentFiles(projectID domain.ID, fn func([]domain.ProjectFile) []domain.ProjectFile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Update(func(st ProjectState) ProjectState {
		if st.Current == nil || st.Current.ID != projectID {
			return st
		}
		st.Current = &domain.ProjectWithFiles{Project: st.Current.Project, Files: fn(st.Current.Files)}
		return st
	})
}

func (s *ProjectStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listGen++
	s.curGen++
	s.state.Set(ProjectState{Projects: []domain.Project{}})
}
