package domain

// Project groups instructions and files
type Project struct {
	ID           ID        `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	Instructions *string   `json:"instructions,omitempty"`
	CreatedAt    Timestamp `json:"created_at"`
	UpdatedAt    Timestamp `json:"updated_at"`
}

// ProjectWithFiles is the detail returned by GET project/{id}
type ProjectWithFiles struct {
	Project
	Files []ProjectFile `json:"files"`
}

// ProjectCreate represents project creation data
type ProjectCreate struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Description *string `json:"description,omitempty"`
}

// ProjectUpdate represents project update data
type ProjectUpdate struct {
	Title        *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description  *string `json:"description,omitempty"`
	Instructions *string `json:"instructions,omitempty"`
}

// ProjectFile is a file attached to a project
type ProjectFile struct {
	ID        ID        `json:"id"`
	ProjectID ID        `json:"project_id"`
	Filename  string    `json:"filename"`
	FileType  string    `json:"file_type"`
	FileSize  int64     `json:"file_size"`
	CreatedAt Timestamp `json:"created_at"`
}
