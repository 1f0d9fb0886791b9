package api

import (
	"context"
	"io"
	"net/http"

	"github.com/Rrens/chat-client/internal/domain"
)

func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	if err := c.doJSON(ctx, http.MethodGet, []string{"project"}, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *Client) GetProject(ctx context.Context, id domain.ID) (*domain.ProjectWithFiles, error) {
	var project domain.ProjectWithFiles
	if err := c.doJSON(ctx, http.MethodGet, []string{"project", id.String()}, nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) CreateProject(ctx context.Context, input domain.ProjectCreate) (*domain.Project, error) {
	var project domain.Project
	if err := c.doJSON(ctx, http.MethodPost, []string{"project"}, input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id domain.ID, input domain.ProjectUpdate) (*domain.Project, error) {
	var project domain.Project
	if err := c.doJSON(ctx, http.MethodPut, []string{"project", id.String()}, input, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id domain.ID) error {
	return c.doJSON(ctx, http.MethodDelete, []string{"project", id.String()}, nil, nil)
}

func (c *Client) UploadProjectFile(ctx context.Context, projectID domain.ID, filename string, content io.Reader) (*domain.ProjectFile, error) {
	var file domain.ProjectFile
	err := c.doMultipart(ctx,
		[]string{"project", projectID.String(), "file"},
		nil,
		filePart{field: "file", filename: filename, content: content},
		&file,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (c *Client) DeleteProjectFile(ctx context.Context, projectID, fileID domain.ID) error {
	return c.doJSON(ctx, http.MethodDelete, []string{"project", projectID.String(), "file", fileID.String()}, nil, nil)
}
