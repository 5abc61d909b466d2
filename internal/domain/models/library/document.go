package library

import (
	"time"
)

// Document is a paper in the user's library with its bibliographic metadata.
// Optional fields are pointers so JSON null round-trips.
type Document struct {
	ID              string    `json:"id" yaml:"id" db:"id"`
	UserID          string    `json:"user_id" yaml:"user_id" db:"user_id"`
	Title           string    `json:"title" yaml:"title" db:"title"`
	Authors         []string  `json:"authors" yaml:"authors,omitempty" db:"authors"`
	Year            *int      `json:"year" yaml:"year,omitempty" db:"year"`
	PublicationType *string   `json:"publication_type" yaml:"publication_type,omitempty" db:"publication_type"`
	Journal         *string   `json:"journal" yaml:"journal,omitempty" db:"journal"`
	Volume          *string   `json:"volume" yaml:"volume,omitempty" db:"volume"`
	Issue           *string   `json:"issue" yaml:"issue,omitempty" db:"issue"`
	Pages           *string   `json:"pages" yaml:"pages,omitempty" db:"pages"`
	Publisher       *string   `json:"publisher" yaml:"publisher,omitempty" db:"publisher"`
	DOI             *string   `json:"doi" yaml:"doi,omitempty" db:"doi"`
	URL             *string   `json:"url" yaml:"url,omitempty" db:"url"`
	AbstractText    *string   `json:"abstract_text" yaml:"abstract_text,omitempty" db:"abstract_text"`
	Keywords        []string  `json:"keywords" yaml:"keywords,omitempty" db:"keywords"`
	PDFURL          *string   `json:"pdf_url" yaml:"pdf_url,omitempty" db:"pdf_url"`
	CreatedAt       time.Time `json:"created_at" yaml:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"updated_at" db:"updated_at"`
}

// DocumentInput is the writable subset of Document, used for manual
// creation and for partial updates. Nil fields are left out of the request.
type DocumentInput struct {
	Title           *string  `json:"title,omitempty"`
	Authors         []string `json:"authors,omitempty"`
	Year            *int     `json:"year,omitempty"`
	PublicationType *string  `json:"publication_type,omitempty"`
	Journal         *string  `json:"journal,omitempty"`
	Volume          *string  `json:"volume,omitempty"`
	Issue           *string  `json:"issue,omitempty"`
	Pages           *string  `json:"pages,omitempty"`
	Publisher       *string  `json:"publisher,omitempty"`
	DOI             *string  `json:"doi,omitempty"`
	URL             *string  `json:"url,omitempty"`
	AbstractText    *string  `json:"abstract_text,omitempty"`
	Keywords        []string `json:"keywords,omitempty"`
}

// IsEmpty reports whether the input sets no field at all
func (in *DocumentInput) IsEmpty() bool {
	return in.Title == nil && in.Authors == nil && in.Year == nil &&
		in.PublicationType == nil && in.Journal == nil && in.Volume == nil &&
		in.Issue == nil && in.Pages == nil && in.Publisher == nil &&
		in.DOI == nil && in.URL == nil && in.AbstractText == nil && in.Keywords == nil
}
