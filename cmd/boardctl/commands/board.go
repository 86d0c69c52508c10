package commands

import (
	"github.com/spf13/cobra"
)

func newBoardCmd(o *options) *cobra.Command {
	var (
		ids      bool
		minimize []string
		collapse []string
	)

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Print the board",
		Long: `Print every client with its projects and assigned consultants,
followed by the available bucket.

Examples:
  boardctl board
  boardctl board --ids
  boardctl board --minimize <client-id> --collapse <project-id>`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, cache, err := o.actions(cmd.Context())
			if err != nil {
				return err
			}

			for _, id := range minimize {
				if !cache.ToggleClientExpanded(id) {
					o.p.Warning("no client %s on the board", id)
				}
			}
			for _, id := range collapse {
				if !cache.ToggleProjectCollapsed(id) {
					o.p.Warning("no project %s on the board", id)
				}
			}

			o.p.ShowIDs(ids)
			o.p.Board(cache.Snapshot(), a.Status())
			return nil
		},
	}

	cmd.Flags().BoolVar(&ids, "ids", false, "Show entity ids")
	cmd.Flags().StringSliceVar(&minimize, "minimize", nil, "Client ids to show minimized")
	cmd.Flags().StringSliceVar(&collapse, "collapse", nil, "Project ids to show collapsed")
	return cmd
}
