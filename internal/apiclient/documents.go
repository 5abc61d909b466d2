package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"scholarvault/internal/domain/models/library"
)

// ListDocuments returns the user's documents, newest first
func (c *Client) ListDocuments(ctx context.Context) ([]library.Document, error) {
	return c.documents(ctx, call{
		method:   http.MethodGet,
		path:     "/api/documents",
		fallback: "Failed to fetch documents",
	})
}

// SearchDocuments runs the server-side search
func (c *Client) SearchDocuments(ctx context.Context, query string) ([]library.Document, error) {
	return c.documents(ctx, call{
		method:   http.MethodGet,
		path:     "/api/documents/search",
		query:    url.Values{"q": {query}},
		fallback: "Failed to search documents",
	})
}

func (c *Client) GetDocument(ctx context.Context, id string) (*library.Document, error) {
	did, err := pathID("document", id)
	if err != nil {
		return nil, err
	}
	return c.document(ctx, call{
		method:   http.MethodGet,
		path:     "/api/documents/" + did,
		fallback: "Failed to fetch document",
	})
}

// CreateDocument adds a document from manually entered metadata
func (c *Client) CreateDocument(ctx context.Context, input library.DocumentInput) (*library.Document, error) {
	body, err := jsonBody(input)
	if err != nil {
		return nil, err
	}
	return c.document(ctx, call{
		method:      http.MethodPost,
		path:        "/api/documents",
		body:        body,
		contentType: "application/json",
		fallback:    "Failed to create document",
	})
}

// UpdateDocument sends only the fields set in input
func (c *Client) UpdateDocument(ctx context.Context, id string, input library.DocumentInput) (*library.Document, error) {
	did, err := pathID("document", id)
	if err != nil {
		return nil, err
	}
	body, err := jsonBody(input)
	if err != nil {
		return nil, err
	}
	return c.document(ctx, call{
		method:      http.MethodPut,
		path:        "/api/documents/" + did,
		body:        body,
		contentType: "application/json",
		fallback:    "Failed to update document",
	})
}

func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	did, err := pathID("document", id)
	if err != nil {
		return err
	}
	return c.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/api/documents/" + did,
		fallback: "Failed to delete document",
	})
}

func (c *Client) document(ctx context.Context, cl call) (*library.Document, error) {
	var doc library.Document
	cl.out = &doc
	if err := c.do(ctx, cl); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) documents(ctx context.Context, cl call) ([]library.Document, error) {
	docs := []library.Document{}
	cl.out = &docs
	if err := c.do(ctx, cl); err != nil {
		return nil, err
	}
	return docs, nil
}
