package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewListCmd builds the list command group.
func NewListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Manage lists within a board",
	}

	cmd.AddCommand(
		newListCreateCmd(app),
		newListRenameCmd(app),
		newListDeleteCmd(app),
	)

	return cmd
}

func newListCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create <board-id> <title>",
		Short: "Create a list on a board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			list, err := app.Boards.CreateList(cmd.Context(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprintf(app.Out, "Created list %s (%s)\n", list.Title, list.ID)
			return nil
		},
	}
}

func newListRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <list-id> <title>",
		Short: "Rename a list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			if err := app.Boards.UpdateList(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprintln(app.Out, "List renamed")
			return nil
		},
	}
}

func newListDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <list-id>",
		Short: "Delete a list and its cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			if err := app.Boards.DeleteList(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprintln(app.Out, "List deleted")
			return nil
		},
	}
}
