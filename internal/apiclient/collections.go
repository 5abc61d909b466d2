package apiclient

import (
	"context"
	"net/http"

	"scholarvault/internal/domain/models/library"
)

type createCollectionRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

// ListCollections returns every collection of the user, flat
func (c *Client) ListCollections(ctx context.Context) ([]library.Collection, error) {
	collections := []library.Collection{}
	err := c.do(ctx, call{
		method:   http.MethodGet,
		path:     "/api/collections",
		fallback: "Failed to fetch collections",
		out:      &collections,
	})
	if err != nil {
		return nil, err
	}
	return collections, nil
}

// CreateCollection creates a collection under parentID (nil = root)
func (c *Client) CreateCollection(ctx context.Context, name string, parentID *string) (*library.Collection, error) {
	if parentID != nil {
		if _, err := pathID("collection", *parentID); err != nil {
			return nil, err
		}
	}
	body, err := jsonBody(createCollectionRequest{Name: name, ParentID: parentID})
	if err != nil {
		return nil, err
	}
	return c.collection(ctx, call{
		method:      http.MethodPost,
		path:        "/api/collections",
		body:        body,
		contentType: "application/json",
		fallback:    "Failed to create collection",
	})
}

// UpdateCollection renames and/or moves a collection
func (c *Client) UpdateCollection(ctx context.Context, id string, patch library.CollectionPatch) (*library.Collection, error) {
	cid, err := pathID("collection", id)
	if err != nil {
		return nil, err
	}
	body, err := jsonBody(patch)
	if err != nil {
		return nil, err
	}
	return c.collection(ctx, call{
		method:      http.MethodPut,
		path:        "/api/collections/" + cid,
		body:        body,
		contentType: "application/json",
		fallback:    "Failed to update collection",
	})
}

// DeleteCollection deletes a collection; the server cascades to descendants
func (c *Client) DeleteCollection(ctx context.Context, id string) error {
	cid, err := pathID("collection", id)
	if err != nil {
		return err
	}
	return c.do(ctx, call{
		method:   http.MethodDelete,
		path:     "/api/collections/" + cid,
		fallback: "Failed to delete collection",
	})
}

// ListCollectionDocuments returns the documents directly in a collection
func (c *Client) ListCollectionDocuments(ctx context.Context, id string) ([]library.Document, error) {
	cid, err := pathID("collection", id)
	if err != nil {
		return nil, err
	}
	return c.documents(ctx, call{
		method:   http.MethodGet,
		path:     "/api/collections/" + cid + "/documents",
		fallback: "Failed to fetch collection documents",
	})
}

// AddDocumentToCollection records a membership
func (c *Client) AddDocumentToCollection(ctx context.Context, collectionID, documentID string) error {
	path, err := membershipPath(collectionID, documentID)
	if err != nil {
		return err
	}
	return c.do(ctx, call{
		method:   http.MethodPost,
		path:     path,
		fallback: "Failed to add document to collection",
	})
}

// RemoveDocumentFromCollection drops a membership
func (c *Client) RemoveDocumentFromCollection(ctx context.Context, collectionID, documentID string) error {
	path, err := membershipPath(collectionID, documentID)
	if err != nil {
		return err
	}
	return c.do(ctx, call{
		method:   http.MethodDelete,
		path:     path,
		fallback: "Failed to remove document from collection",
	})
}

func membershipPath(collectionID, documentID string) (string, error) {
	cid, err := pathID("collection", collectionID)
	if err != nil {
		return "", err
	}
	did, err := pathID("document", documentID)
	if err != nil {
		return "", err
	}
	return "/api/collections/" + cid + "/documents/" + did, nil
}

func (c *Client) collection(ctx context.Context, cl call) (*library.Collection, error) {
	var collection library.Collection
	cl.out = &collection
	if err := c.do(ctx, cl); err != nil {
		return nil, err
	}
	return &collection, nil
}
