package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	models "scholarvault/internal/domain/models/library"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// documentFlags are the editable metadata fields shared by create and edit
type documentFlags struct {
	title, publicationType, journal, volume, issue string
	pages, publisher, doi, url, abstract           string
	year                                           int
	authors, keywords                              []string
}

func (f *documentFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.title, "title", "", "title")
	fs.StringSliceVar(&f.authors, "authors", nil, "comma-separated authors")
	fs.IntVar(&f.year, "year", 0, "publication year")
	fs.StringVar(&f.publicationType, "type", "", "publication type, e.g. article")
	fs.StringVar(&f.journal, "journal", "", "journal")
	fs.StringVar(&f.volume, "volume", "", "volume")
	fs.StringVar(&f.issue, "issue", "", "issue")
	fs.StringVar(&f.pages, "pages", "", "pages")
	fs.StringVar(&f.publisher, "publisher", "", "publisher")
	fs.StringVar(&f.doi, "doi", "", "DOI")
	fs.StringVar(&f.url, "url", "", "URL")
	fs.StringVar(&f.abstract, "abstract", "", "abstract")
	fs.StringSliceVar(&f.keywords, "keywords", nil, "comma-separated keywords")
}

// input builds a DocumentInput holding only the flags given on the command line
func (f *documentFlags) input(cmd *cobra.Command) *models.DocumentInput {
	changed := cmd.Flags().Changed
	str := func(name, v string) *string {
		if !changed(name) {
			return nil
		}
		return &v
	}

	in := &models.DocumentInput{
		Title:           str("title", f.title),
		PublicationType: str("type", f.publicationType),
		Journal:         str("journal", f.journal),
		Volume:          str("volume", f.volume),
		Issue:           str("issue", f.issue),
		Pages:           str("pages", f.pages),
		Publisher:       str("publisher", f.publisher),
		DOI:             str("doi", f.doi),
		URL:             str("url", f.url),
		AbstractText:    str("abstract", f.abstract),
	}
	if changed("year") {
		year := f.year
		in.Year = &year
	}
	if changed("authors") {
		in.Authors = append([]string{}, f.authors...)
	}
	if changed("keywords") {
		in.Keywords = append([]string{}, f.keywords...)
	}
	return in
}

func newUploadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upload FILE.pdf",
		Short: "Upload a PDF; the server extracts its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authedLibrary(cmd.Context())
			if err != nil {
				return err
			}

			status := cmd.ErrOrStderr()
			doc, err := a.library.UploadDocument(ctx, args[0], func(p models.UploadProgress) {
				switch p.Phase {
				case models.UploadUploading:
					if p.Total > 0 {
						fmt.Fprintf(status, "\ruploading %s %3d%%", p.FileName, p.BytesSent*100/p.Total)
					}
				case models.UploadExtracting:
					fmt.Fprintf(status, "\nextracting metadata...\n")
				case models.UploadFailed:
					fmt.Fprintln(status)
				}
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %q (%s)\n", doc.Title, doc.ID)
			return nil
		},
	}
}

func newCreateCmd(a *app) *cobra.Command {
	var flags documentFlags
	cmd := &cobra.Command{
		Use:   "create --title TITLE [flags]",
		Short: "Add a document by hand, without a PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := a.authedLibrary(cmd.Context())
			if err != nil {
				return err
			}
			doc, err := a.library.CreateDocument(ctx, flags.input(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %q (%s)\n", doc.Title, doc.ID)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show DOCUMENT_ID",
		Short: "Show a document's metadata and collections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authedLibrary(cmd.Context())
			if err != nil {
				return err
			}
			doc, err := a.library.GetDocument(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := writeYAML(out, doc); err != nil {
				return err
			}
			if ids := a.library.CollectionsFor(doc.ID); len(ids) > 0 {
				fmt.Fprintln(out, "collections:")
				for _, id := range ids {
					path, err := a.library.CollectionPath(id)
					if err != nil {
						path = id
					}
					fmt.Fprintf(out, "  - %s\n", path)
				}
			}
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var flags documentFlags
	cmd := &cobra.Command{
		Use:   "edit DOCUMENT_ID [flags]",
		Short: "Change a document's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authedLibrary(cmd.Context())
			if err != nil {
				return err
			}
			doc, err := a.library.UpdateDocument(ctx, args[0], flags.input(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %q\n", doc.Title)
			return nil
		},
	}
	flags.bind(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete DOCUMENT_ID",
		Short: "Delete a document from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authedLibrary(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.library.DeleteDocument(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Deleted")
			return nil
		},
	}
}

func newSearchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "search QUERY",
		Short: "Full-text search across the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			docs, err := a.library.SearchDocuments(ctx, args[0])
			if err != nil {
				return err
			}
			return writeDocumentTable(cmd.OutOrStdout(), docs)
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the library as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.authedLibrary(cmd.Context()); err != nil {
				return err
			}
			s, err := a.session.Current()
			if err != nil {
				return err
			}
			snap := a.library.Snapshot()
			snap.UserID = s.UserID()

			if output == "" || output == "-" {
				return writeYAML(cmd.OutOrStdout(), snap)
			}
			return exportFile(output, snap)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func exportFile(path string, snap *models.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := writeYAML(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
