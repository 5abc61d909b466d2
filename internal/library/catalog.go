package library

import (
	"slices"

	"scholarvault/internal/domain"
	models "scholarvault/internal/domain/models/library"
)

// Catalog is the user's documents keyed by id, kept in the order the server
// listed them (newest first).
type Catalog struct {
	docs  map[string]*models.Document
	order []string
}

func NewCatalog() *Catalog {
	return &Catalog{docs: make(map[string]*models.Document)}
}

// Put inserts or replaces a document. A replaced document keeps its position;
// a new one is appended.
func (c *Catalog) Put(doc models.Document) {
	c.put(doc, false)
}

// PutFront inserts a new document at the head, as a fresh upload appears
func (c *Catalog) PutFront(doc models.Document) {
	c.put(doc, true)
}

func (c *Catalog) put(doc models.Document, front bool) {
	if _, exists := c.docs[doc.ID]; !exists {
		if front {
			c.order = slices.Insert(c.order, 0, doc.ID)
		} else {
			c.order = append(c.order, doc.ID)
		}
	}
	c.docs[doc.ID] = cloneDocument(&doc)
}

// Get returns a copy of the document
func (c *Catalog) Get(id string) (models.Document, error) {
	doc, ok := c.docs[id]
	if !ok {
		return models.Document{}, &domain.NotFoundError{ResourceType: "document", ID: id}
	}
	return *cloneDocument(doc), nil
}

func (c *Catalog) Has(id string) bool {
	_, ok := c.docs[id]
	return ok
}

// Remove deletes a document, reporting whether it was present
func (c *Catalog) Remove(id string) bool {
	if _, ok := c.docs[id]; !ok {
		return false
	}
	delete(c.docs, id)
	c.order = slices.DeleteFunc(c.order, func(oid string) bool { return oid == id })
	return true
}

// All returns copies in catalog order
func (c *Catalog) All() []models.Document {
	all := make([]models.Document, 0, len(c.order))
	for _, id := range c.order {
		all = append(all, *cloneDocument(c.docs[id]))
	}
	return all
}

func (c *Catalog) Len() int {
	return len(c.docs)
}

// cloneDocument copies d so no slice or pointer field is shared with it
func cloneDocument(d *models.Document) *models.Document {
	cp := *d
	cp.Authors = slices.Clone(d.Authors)
	cp.Keywords = slices.Clone(d.Keywords)
	cp.Year = clonePtr(d.Year)
	for _, f := range []**string{
		&cp.PublicationType, &cp.Journal, &cp.Volume, &cp.Issue, &cp.Pages,
		&cp.Publisher, &cp.DOI, &cp.URL, &cp.AbstractText, &cp.PDFURL,
	} {
		*f = clonePtr(*f)
	}
	return &cp
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
