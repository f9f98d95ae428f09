package commands

import (
	"fmt"
	"strings"

	"github.com/c360studio/boardctl/model"
	"github.com/spf13/cobra"
)

// NewBoardCmd builds the board command group.
func NewBoardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Manage boards",
	}

	cmd.AddCommand(
		newBoardListCmd(app),
		newBoardShowCmd(app),
		newBoardCreateCmd(app),
		newBoardUpdateCmd(app),
		newBoardDeleteCmd(app),
		newBoardFavoriteCmd(app),
		newBoardArchiveCmd(app),
		newBoardShareCmd(app),
		newBoardDuplicateCmd(app),
		newBoardTemplatesCmd(app),
	)

	return cmd
}

func newBoardListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your boards",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			if err := app.Boards.FetchBoards(cmd.Context()); err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprint(app.Out, renderBoards(app.Boards.Boards()))
			return nil
		},
	}
}

func newBoardShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <board-id>",
		Short: "Show a board with its lists and cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			if err := app.Boards.FetchBoardDetails(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}

			var sb strings.Builder
			board := app.Boards.CurrentBoard()
			sb.WriteString(fmt.Sprintf("%s (%s)\n", board.Name, board.ID))
			for _, list := range app.Boards.Lists() {
				sb.WriteString(fmt.Sprintf("\n## %s (%s)\n", list.Title, list.ID))
				for _, card := range app.Boards.CardsIn(list.ID) {
					sb.WriteString(fmt.Sprintf("- %s (%s)", card.Title, card.ID))
					if card.DueDate != nil {
						sb.WriteString(fmt.Sprintf("  due %s", card.DueDate.Format("2006-01-02")))
					}
					sb.WriteString("\n")
				}
			}
			fmt.Fprint(app.Out, sb.String())
			return nil
		},
	}
}

func newBoardCreateCmd(app *App) *cobra.Command {
	var background string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			board, err := app.Boards.CreateBoard(cmd.Context(), args[0], background)
			if err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprintf(app.Out, "Created board %s (%s)\n", board.Name, board.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&background, "background", "#0079bf", "Background color")

	return cmd
}

func newBoardUpdateCmd(app *App) *cobra.Command {
	var (
		name       string
		background string
	)

	cmd := &cobra.Command{
		Use:   "update <board-id>",
		Short: "Update a board's name or background",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}

			var patch model.BoardPatch
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("background") {
				patch.Background = &background
			}
			if patch.Name == nil && patch.Background == nil {
				return fmt.Errorf("nothing to update: pass --name or --background")
			}

			if err := app.Boards.UpdateBoard(cmd.Context(), args[0], patch); err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprintln(app.Out, "Board updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New board name")
	cmd.Flags().StringVar(&background, "background", "", "New background color")

	return cmd
}

func newBoardDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <board-id>",
		Short: "Delete a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			if err := app.Boards.DeleteBoard(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprintln(app.Out, "Board deleted")
			return nil
		},
	}
}

func newBoardFavoriteCmd(app *App) *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "favorite <board-id>",
		Short: "Mark a board as a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			if err := app.Boards.ToggleFavorite(cmd.Context(), args[0], !unset); err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			if unset {
				fmt.Fprintln(app.Out, "Removed from favorites")
			} else {
				fmt.Fprintln(app.Out, "Added to favorites")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&unset, "unset", false, "Remove from favorites instead")

	return cmd
}

func newBoardArchiveCmd(app *App) *cobra.Command {
	var unset bool

	cmd := &cobra.Command{
		Use:   "archive <board-id>",
		Short: "Archive a board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			if err := app.Boards.ToggleArchive(cmd.Context(), args[0], !unset); err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			if unset {
				fmt.Fprintln(app.Out, "Board restored")
			} else {
				fmt.Fprintln(app.Out, "Board archived")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&unset, "unset", false, "Restore the board instead")

	return cmd
}

func newBoardShareCmd(app *App) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "share <board-id> <user-id>",
		Short: "Share a board with another user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			r, ok := model.ParseRole(role)
			if !ok || r == model.RoleOwner {
				return fmt.Errorf("role must be admin or member")
			}
			if err := app.Boards.ShareBoard(cmd.Context(), args[0], args[1], r); err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprintf(app.Out, "Shared with %s as %s\n", args[1], r)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "member", "Role to grant (admin, member)")

	return cmd
}

func newBoardDuplicateCmd(app *App) *cobra.Command {
	var keepMembers bool

	cmd := &cobra.Command{
		Use:   "duplicate <board-id> <name>",
		Short: "Duplicate a board under a new name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			board, err := app.Boards.DuplicateBoard(cmd.Context(), args[0], args[1], keepMembers)
			if err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprintf(app.Out, "Created board %s (%s)\n", board.Name, board.ID)
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepMembers, "keep-members", false, "Copy the member list too")

	return cmd
}

func newBoardTemplatesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List available board templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			boards, err := app.Boards.FetchBoardTemplates(cmd.Context())
			if err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprint(app.Out, renderBoards(boards))
			return nil
		},
	}
}

// renderBoards formats a board collection as a text table.
func renderBoards(boards []model.Board) string {
	if len(boards) == 0 {
		return "No boards\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-26s %-24s %-4s %-8s\n", "ID", "NAME", "FAV", "ARCHIVED"))
	for _, b := range boards {
		fav := ""
		if b.IsFavorite {
			fav = "*"
		}
		archived := ""
		if b.IsArchived {
			archived = "yes"
		}
		sb.WriteString(fmt.Sprintf("%-26s %-24s %-4s %-8s\n", b.ID, b.Name, fav, archived))
	}
	return sb.String()
}
