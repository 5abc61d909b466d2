package library

// Membership records that a document belongs to a collection.
type Membership struct {
	CollectionID string `json:"collection_id" yaml:"collection_id" db:"collection_id"`
	DocumentID   string `json:"document_id" yaml:"document_id" db:"document_id"`
}
