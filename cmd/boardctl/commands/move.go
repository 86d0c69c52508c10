package commands

import (
	"strings"

	"github.com/aussiebroadwan/consultboard/pkg/kanban"
	"github.com/spf13/cobra"
)

func newMoveCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "move CONSULTANT TARGET",
		Short: "Drag a consultant card onto a project, another card, or the available bucket",
		Long: `Move a consultant the way a drag on the board would. TARGET is
resolved like a drop surface: "available" (or "Disponível") frees the
consultant, a project id assigns to it, and another consultant's id
assigns to wherever that consultant sits.

Examples:
  boardctl move <consultant-id> <project-id>
  boardctl move <consultant-id> available`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cache, err := o.actions(ctx)
			if err != nil {
				return err
			}

			surface := args[1]
			if strings.EqualFold(surface, "available") || strings.EqualFold(surface, kanban.AvailableLabel) {
				surface = kanban.AvailableLabel
			}

			drag := kanban.NewDragCoordinator(cache, a)
			if err := drag.Start(args[0]); err != nil {
				return o.p.Error("cannot pick up consultant", err.Error(),
					[]string{"Run `boardctl board --ids` to see current ids"})
			}
			if !drag.Hover(surface) {
				drag.Cancel()
				return o.p.Error("unknown drop target", "No project, consultant or bucket is called "+args[1]+".",
					[]string{"Run `boardctl board --ids` to see current ids"})
			}

			if err := drag.Drop(ctx); err != nil {
				return o.failure(err, a.Status())
			}

			x, _ := cache.Consultant(args[0])
			o.p.Success("%s moved to %s", x.Name, x.Label)
			return nil
		},
	}
}
