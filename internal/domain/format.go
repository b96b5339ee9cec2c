package domain

import (
	"path/filepath"
	"strings"
)

// Format is a file format for project import and export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var Formats = []Format{FormatCSV, FormatXLSX, FormatJSON, FormatYAML}

// ParseFormat accepts a format name or a file extension, with or without
// the leading dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", Invalid(nil, "format", "unsupported format %q", s)
}

// FormatFromPath infers the format from a file name's extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", Invalid(nil, "format", "cannot infer format of %q", path)
	}
	return ParseFormat(ext)
}

// Tabular reports whether f is a row-per-task format.
func (f Format) Tabular() bool {
	return f == FormatCSV || f == FormatXLSX
}
