package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/c360studio/boardctl/model"
	"github.com/spf13/cobra"
)

// NewCardCmd builds the card command group.
func NewCardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Manage cards",
	}

	cmd.AddCommand(
		newCardCreateCmd(app),
		newCardShowCmd(app),
		newCardEditCmd(app),
		newCardMoveCmd(app),
		newCardDeleteCmd(app),
		newCardCommentCmd(app),
		newCardChecklistCmd(app),
		newCardAttachCmd(app),
	)

	return cmd
}

func newCardCreateCmd(app *App) *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create <list-id> <title>",
		Short: "Create a card on a list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			card, err := app.Boards.CreateCard(cmd.Context(), args[0], args[1], description)
			if err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprintf(app.Out, "Created card %s (%s)\n", card.Title, card.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Card description")

	return cmd
}

func newCardShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <card-id>",
		Short: "Show a card with its checklists and comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			card, err := app.Boards.FetchCard(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprint(app.Out, renderCard(card))
			return nil
		},
	}
}

func newCardEditCmd(app *App) *cobra.Command {
	var (
		title       string
		description string
		due         string
		labels      []string
	)

	cmd := &cobra.Command{
		Use:   "edit <card-id>",
		Short: "Edit a card's title, description, due date, or labels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}

			var patch model.CardPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("due") {
				t, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("invalid due date %q: expected YYYY-MM-DD", due)
				}
				patch.DueDate = &t
			}
			if cmd.Flags().Changed("label") {
				patch.Labels = labels
			}
			if patch.Title == nil && patch.Description == nil && patch.DueDate == nil && patch.Labels == nil {
				return fmt.Errorf("nothing to update: pass --title, --description, --due, or --label")
			}

			if err := app.Boards.UpdateCard(cmd.Context(), args[0], patch); err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprintln(app.Out, "Card updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringArrayVar(&labels, "label", nil, "Label (repeatable, replaces the label set)")

	return cmd
}

func newCardMoveCmd(app *App) *cobra.Command {
	var boardID string

	cmd := &cobra.Command{
		Use:   "move <card-id> <source-list-id> <dest-list-id>",
		Short: "Move a card to another list",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			// Load the board first so a rejected move can reconcile
			// against it.
			if err := app.Boards.FetchBoardDetails(cmd.Context(), boardID); err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			if err := app.Boards.MoveCard(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprintln(app.Out, "Card moved")
			return nil
		},
	}

	cmd.Flags().StringVar(&boardID, "board", "", "Board the card belongs to")
	cmd.MarkFlagRequired("board")

	return cmd
}

func newCardDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <card-id>",
		Short: "Delete a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			if err := app.Boards.DeleteCard(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprintln(app.Out, "Card deleted")
			return nil
		},
	}
}

func newCardCommentCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "comment <card-id> <text>",
		Short: "Add a comment to a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			if err := app.Boards.AddComment(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprintln(app.Out, "Comment added")
			return nil
		},
	}
}

func newCardChecklistCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "checklist <card-id> <title>",
		Short: "Add a checklist to a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			if err := app.Boards.AddChecklist(cmd.Context(), args[0], args[1]); err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprintln(app.Out, "Checklist added")
			return nil
		},
	}
}

func newCardAttachCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "attach <card-id> <file>",
		Short: "Attach a file to a card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAuth(); err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("open attachment: %w", err)
			}
			defer f.Close()

			if err := app.Boards.AddAttachment(cmd.Context(), args[0], filepath.Base(args[1]), f); err != nil {
				return fmt.Errorf("%s", app.Boards.Err())
			}
			fmt.Fprintln(app.Out, "Attachment added")
			return nil
		},
	}
}

// renderCard formats a card's full detail.
func renderCard(card *model.Card) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s (%s)\n", card.Title, card.ID))
	if card.Description != "" {
		sb.WriteString(card.Description + "\n")
	}
	if card.DueDate != nil {
		sb.WriteString(fmt.Sprintf("Due: %s\n", card.DueDate.Format("2006-01-02")))
	}
	if len(card.Labels) > 0 {
		sb.WriteString("Labels: " + strings.Join(card.Labels, ", ") + "\n")
	}
	for _, cl := range card.Checklists {
		sb.WriteString(fmt.Sprintf("\n## %s\n", cl.Title))
		for _, item := range cl.Items {
			mark := " "
			if item.Completed {
				mark = "x"
			}
			sb.WriteString(fmt.Sprintf("- [%s] %s\n", mark, item.Text))
		}
	}
	if len(card.Comments) > 0 {
		sb.WriteString("\n## Comments\n")
		for _, c := range card.Comments {
			sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", c.UserID, c.CreatedAt.Format("2006-01-02 15:04"), c.Text))
		}
	}
	if len(card.Attachments) > 0 {
		sb.WriteString("\n## Attachments\n")
		for _, a := range card.Attachments {
			sb.WriteString(fmt.Sprintf("- %s (%s)\n", a.Name, a.URL))
		}
	}
	return sb.String()
}
