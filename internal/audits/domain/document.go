package audits

import (
	"path/filepath"
	"strings"
	"time"

	"energy-audit/internal/validation"
)

var allowedExtensions = map[string]struct{}{
	"pdf": {}, "xlsx": {}, "docx": {}, "jpg": {}, "png": {},
}

// Document is the metadata of a file attached to a project.
type Document struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Description string    `json:"descripcion"`
	StorageKey  string    `json:"storage_key"`
	FileName    string    `json:"file_name"`
	UploadedBy  string    `json:"uploaded_by"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Validate checks document invariants.
func (d Document) Validate() error {
	verr := validation.New("document")
	if strings.TrimSpace(d.Description) == "" {
		verr.Add("descripcion", "este campo es obligatorio")
	}
	if strings.TrimSpace(d.StorageKey) == "" {
		verr.Add("archivo", "este campo es obligatorio")
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(d.FileName)), ".")
	if _, ok := allowedExtensions[ext]; !ok {
		verr.Add("archivo", "extensión de archivo no permitida")
	}
	return verr.OrNil()
}
