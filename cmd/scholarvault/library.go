package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	models "scholarvault/internal/domain/models/library"
	"scholarvault/internal/domain/services"
	lib "scholarvault/internal/library"

	"github.com/spf13/cobra"
)

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch the whole library from the API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := a.authed(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := a.library.Sync(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d collections, %d documents, %d memberships\n",
				stats.Collections, stats.Documents, stats.Memberships)
			return nil
		},
	}
}

func newTreeCmd(a *app) *cobra.Command {
	var (
		all      bool
		format   string
		expand   []string
		selected string
	)
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the collection tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.authedLibrary(cmd.Context()); err != nil {
				return err
			}

			view := lib.NewViewState()
			for _, id := range expand {
				view.Expand(id)
			}
			if selected != "" {
				if _, err := a.library.Collection(selected); err != nil {
					return err
				}
				view.Select(&selected)
			}
			return writeForest(cmd.OutOrStdout(), a.library.Forest(view), view, all, format)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "show every collection regardless of expansion")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json or yaml")
	cmd.Flags().StringSliceVar(&expand, "expand", nil, "collection ids to expand")
	cmd.Flags().StringVar(&selected, "select", "", "collection id to mark as selected")
	return cmd
}

func writeForest(w io.Writer, forest []*models.CollectionNode, view *lib.ViewState, all bool, format string) error {
	switch format {
	case "text":
		return lib.Render(w, forest, view, all)
	case "json":
		if forest == nil {
			forest = []*models.CollectionNode{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(forest)
	case "yaml":
		return writeYAML(w, forest)
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func newLsCmd(a *app) *cobra.Command {
	var collectionID string
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List documents, all or in one collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.authedLibrary(cmd.Context()); err != nil {
				return err
			}

			var selection *string
			if collectionID != "" {
				selection = &collectionID
				path, err := a.library.CollectionPath(collectionID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n\n", path)
			}
			docs, err := a.library.DocumentsFor(selection)
			if err != nil {
				return err
			}
			return writeDocumentTable(cmd.OutOrStdout(), docs)
		},
	}
	cmd.Flags().StringVar(&collectionID, "collection", "", "collection id (default: all documents)")
	return cmd
}

func writeDocumentTable(w io.Writer, docs []models.Document) error {
	if len(docs) == 0 {
		_, err := fmt.Fprintln(w, "No documents")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tYEAR\tTITLE")
	for _, d := range docs {
		year := "-"
		if d.Year != nil {
			year = strconv.Itoa(*d.Year)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, year, d.Title)
	}
	return tw.Flush()
}

func newMkdirCmd(a *app) *cobra.Command {
	var parentID string
	cmd := &cobra.Command{
		Use:   "mkdir NAME",
		Short: "Create a collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authedLibrary(cmd.Context())
			if err != nil {
				return err
			}
			req := &services.CreateCollectionRequest{Name: args[0]}
			if parentID != "" {
				req.ParentID = &parentID
			}
			created, err := a.library.CreateCollection(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", created.Name, created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&parentID, "parent", "", "parent collection id (default: root)")
	return cmd
}

func newRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename ID NAME",
		Short: "Rename a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authedLibrary(cmd.Context())
			if err != nil {
				return err
			}
			renamed, err := a.library.RenameCollection(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed to %s\n", renamed.Name)
			return nil
		},
	}
}

// parseParent maps the mv target argument to a parent id; "root" or ""
// move to the top level
func parseParent(arg string) *string {
	if arg == "" || arg == "root" {
		return nil
	}
	return &arg
}

func newMvCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mv ID PARENT_ID|root",
		Short: "Move a collection under another, or to the root",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authedLibrary(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := a.library.MoveCollection(ctx, args[0], parseParent(args[1])); err != nil {
				return err
			}
			path, err := a.library.CollectionPath(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved to %s\n", path)
			return nil
		},
	}
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a collection and everything below it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authedLibrary(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := a.library.DeleteCollection(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d collection(s)\n", len(removed))
			return nil
		},
	}
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add COLLECTION_ID DOCUMENT_ID",
		Short: "File a document into a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authedLibrary(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.library.AddToCollection(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Added")
			return nil
		},
	}
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove COLLECTION_ID DOCUMENT_ID",
		Short: "Take a document out of a collection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := a.authedLibrary(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.library.RemoveFromCollection(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed")
			return nil
		},
	}
}
