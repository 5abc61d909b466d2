package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "scholarvault",
		Short: "Organise a ScholarVault paper library from the terminal",
		Long: `scholarvault manages the collections and documents of a ScholarVault
account: browse the collection tree, file papers into collections,
upload PDFs and serve the library locally as JSON.

Environment:
  SCHOLARVAULT_API_URL  API base URL (default http://localhost:3000)
  SCHOLARVAULT_HOME     state directory (default ~/.config/scholarvault)
  CACHE_DATABASE_URL    snapshot cache: sqlite path, postgres URL or "off"`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newProfileCmd(a),

		newSyncCmd(a),
		newTreeCmd(a),
		newLsCmd(a),
		newMkdirCmd(a),
		newRenameCmd(a),
		newMvCmd(a),
		newRmCmd(a),
		newAddCmd(a),
		newRemoveCmd(a),

		newUploadCmd(a),
		newCreateCmd(a),
		newShowCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newSearchCmd(a),
		newExportCmd(a),

		newServeCmd(a),
	)
	return root
}
