package model

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Document represents a source article. Content is held only while the
// document moves through the extraction pipeline; it is not persisted.
type Document struct {
	ID              int64     `json:"id"`
	RID             uuid.UUID `json:"rid"`
	Title           string    `json:"title"`
	Authors         string    `json:"authors,omitempty"`
	Journal         string    `json:"journal,omitempty"`
	DOI             string    `json:"doi,omitempty"`
	PublicationDate string    `json:"publication_date,omitempty"`
	Source          string    `json:"source,omitempty"`
	Content         string    `json:"content,omitempty" db:"-"`
	Metadata        Metadata  `json:"metadata,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewDocumentFromFile reads a cleaned-text file and creates a Document
// with the file content. The title defaults to the filename without
// extension, and source to the file path.
func NewDocumentFromFile(filePath string, metadata Metadata) (*Document, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(filePath)
	title := filename[:len(filename)-len(filepath.Ext(filename))]
	if title == "" {
		title = filename
	}

	return &Document{
		Title:    title,
		Source:   filePath,
		Content:  string(content),
		Metadata: metadata,
	}, nil
}
