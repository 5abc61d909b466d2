package config

const (
	// MaxCollectionNameLength is the maximum length for collection names.
	// Limited to 255 to fit the server's VARCHAR(255) column.
	MaxCollectionNameLength = 255

	// MaxDocumentTitleLength is the maximum length for document titles.
	// Paper titles run long, but anything past this is extraction noise.
	MaxDocumentTitleLength = 1000

	// MaxTreeDepth caps recursion when building the display forest.
	// Real libraries are a handful of levels deep; hitting the cap means
	// the parent links are corrupted.
	MaxTreeDepth = 64

	// MaxUploadBytes is the largest PDF the client will send.
	MaxUploadBytes = 100 << 20

	// MaxSearchQueryLength bounds the free-text search query.
	MaxSearchQueryLength = 500
)
