package bans

import (
	"fmt"
	"strings"

	"github.com/minestax-uz/web/cmd/panelctl/internal/cmdutil"
	"github.com/minestax-uz/web/pkg/authz"
	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var commentCmd = &cobra.Command{
	Use:   "comment <ban-id> <text>...",
	Short: "Add a moderation comment to a ban",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		banID, err := parseID("ban", args[0])
		if err != nil {
			return err
		}
		if _, err := cmdutil.RequireCapability(cmd.Context(), authz.BanComment, "comment on bans"); err != nil {
			return err
		}
		c, err := cmdutil.Client(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := cmdutil.WithTimeout(cmd.Context())
		defer cancel()

		comment, err := c.AddBanComment(ctx, sdk.CommentInput{
			BanID:   banID,
			Content: strings.Join(args[1:], " "),
		})
		if err != nil {
			return cmdutil.Explain(err)
		}
		pterm.Success.Printf("Comment #%d added to ban #%d\n", comment.ID, banID)
		return nil
	},
}

var uncommentCmd = &cobra.Command{
	Use:   "uncomment <ban-id> <comment-id>",
	Short: "Delete a moderation comment",
	Long: `Deletes a comment from a ban. Moderators can only delete their own comments;
administrators can delete any comment.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		banID, err := parseID("ban", args[0])
		if err != nil {
			return err
		}
		commentID, err := parseID("comment", args[1])
		if err != nil {
			return err
		}
		c, err := cmdutil.Client(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := cmdutil.WithTimeout(cmd.Context())
		defer cancel()

		comments, err := c.BanComments(ctx, banID)
		if err != nil {
			return cmdutil.Explain(err)
		}
		owner, err := commentAuthor(comments, commentID)
		if err != nil {
			return err
		}
		if _, err := cmdutil.RequireOwnership(ctx, authz.BanCommentDelete, owner, "delete this comment"); err != nil {
			return err
		}

		if err := c.DeleteBanComment(ctx, commentID); err != nil {
			return cmdutil.Explain(err)
		}
		pterm.Success.Printf("Comment #%d deleted\n", commentID)
		return nil
	},
}

func commentAuthor(comments []sdk.Comment, id int64) (string, error) {
	for _, c := range comments {
		if c.ID == id {
			return c.Author(), nil
		}
	}
	return "", fmt.Errorf("comment #%d: %w", id, sdk.ErrNotFound)
}
