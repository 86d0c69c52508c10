package commands

import (
	"github.com/aussiebroadwan/consultboard/pkg/kanban"
	"github.com/spf13/cobra"
)

func newClientCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Add or remove clients",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Add a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := o.actions(cmd.Context())
			if err != nil {
				return err
			}
			c, err := a.AddClient(cmd.Context(), args[0])
			if err != nil {
				return o.failure(err, a.Status())
			}
			o.p.Success("client %s added (%s)", c.Name, c.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm ID",
		Short: "Remove a client, its projects, and free their consultants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := o.actions(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.DeleteClient(cmd.Context(), args[0]); err != nil {
				return o.failure(err, a.Status())
			}
			o.p.Success("client %s removed", args[0])
			return nil
		},
	})

	return cmd
}

func newProjectCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Add, rename or remove projects",
	}

	var clientID string
	add := &cobra.Command{
		Use:   "add TITLE --client ID",
		Short: "Add a project to a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := o.actions(cmd.Context())
			if err != nil {
				return err
			}
			p, err := a.AddProject(cmd.Context(), args[0], clientID)
			if err != nil {
				return o.failure(err, a.Status())
			}
			o.p.Success("project %s added (%s)", p.Title, p.ID)
			return nil
		},
	}
	add.Flags().StringVar(&clientID, "client", "", "Owning client id")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "rename ID TITLE",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := o.actions(cmd.Context())
			if err != nil {
				return err
			}
			p, err := a.RenameProject(cmd.Context(), args[0], args[1])
			if err != nil {
				return o.failure(err, a.Status())
			}
			o.p.Success("project %s renamed to %s", p.ID, p.Title)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm ID",
		Short: "Remove a project and free its consultants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := o.actions(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.DeleteProject(cmd.Context(), args[0]); err != nil {
				return o.failure(err, a.Status())
			}
			o.p.Success("project %s removed", args[0])
			return nil
		},
	})

	return cmd
}

func newConsultantCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consultant",
		Short: "Add or remove consultants",
	}

	var role, projectID string
	add := &cobra.Command{
		Use:   "add NAME [--role ROLE] [--project ID]",
		Short: "Add a consultant, available unless --project is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := o.actions(cmd.Context())
			if err != nil {
				return err
			}
			x, err := a.AddConsultant(cmd.Context(), args[0], role, kanban.Assigned(projectID))
			if err != nil {
				return o.failure(err, a.Status())
			}
			o.p.Success("consultant %s added (%s)", x.Name, x.ID)
			return nil
		},
	}
	add.Flags().StringVar(&role, "role", "", "Role shown on the card")
	add.Flags().StringVar(&projectID, "project", "", "Project to assign to")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm ID",
		Short: "Remove a consultant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := o.actions(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.DeleteConsultant(cmd.Context(), args[0]); err != nil {
				return o.failure(err, a.Status())
			}
			o.p.Success("consultant %s removed", args[0])
			return nil
		},
	})

	return cmd
}
