package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/wbs"
)

// LoadProjectDocument decodes a project JSON document, fills in defaults
// for fields older documents omit, and recomputes the task forest.
func LoadProjectDocument(r io.Reader) (*domain.Project, []domain.Warning, error) {
	var p domain.Project
	dec := json.NewDecoder(r)
	if err := dec.Decode(&p); err != nil {
		return nil, nil, domain.Invalid(err, "document", "invalid project JSON: %v", err)
	}
	if p.Name == "" {
		return nil, nil, domain.Invalid(domain.ErrEmptyName, "name", "project name is required")
	}
	p.Normalize()
	warnings := wbs.Refresh(&p)
	return &p, warnings, nil
}

// LoadProjectFile reads a project JSON document from path.
func LoadProjectFile(path string) (*domain.Project, []domain.Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return LoadProjectDocument(f)
}

// ReadTableFile reads a CSV or XLSX file, choosing the reader by extension.
func ReadTableFile(path string) (*Table, error) {
	format, err := domain.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return ReadTable(f, format)
}
