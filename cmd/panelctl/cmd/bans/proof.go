package bans

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/minestax-uz/web/cmd/panelctl/internal/cmdutil"
	"github.com/minestax-uz/web/pkg/authz"
	"github.com/minestax-uz/web/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var proofType string

var proofCmd = &cobra.Command{
	Use:   "proof",
	Short: "Manage ban evidence",
}

var proofAddCmd = &cobra.Command{
	Use:   "add <ban-id> <url>",
	Short: "Attach evidence hosted at a URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		banID, err := parseID("ban", args[0])
		if err != nil {
			return err
		}
		if _, err := cmdutil.RequireCapability(cmd.Context(), authz.BanProofAdd, "attach ban evidence"); err != nil {
			return err
		}
		c, err := cmdutil.Client(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := cmdutil.WithTimeout(cmd.Context())
		defer cancel()

		proof, err := c.AddBanProof(ctx, sdk.ProofInput{
			BanID: banID,
			URL:   args[1],
			Type:  sdk.ProofType(proofType),
		})
		if err != nil {
			return cmdutil.Explain(err)
		}
		pterm.Success.Printf("Evidence #%d attached to ban #%d\n", proof.ID, banID)
		return nil
	},
}

var proofUploadCmd = &cobra.Command{
	Use:   "upload <ban-id> <file>",
	Short: "Upload an image or video as evidence",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		banID, err := parseID("ban", args[0])
		if err != nil {
			return err
		}
		if _, err := cmdutil.RequireCapability(cmd.Context(), authz.BanProofAdd, "attach ban evidence"); err != nil {
			return err
		}
		c, err := cmdutil.Client(cmd.Context())
		if err != nil {
			return err
		}

		f, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return err
		}
		if info.Size() > sdk.MaxProofSize {
			return fmt.Errorf("%s is larger than %d MiB", args[1], sdk.MaxProofSize>>20)
		}

		var bar *pterm.ProgressbarPrinter
		progress := trackProgress(
			func(total int64) {
				bar, _ = pterm.DefaultProgressbar.
					WithTotal(int(total)).
					WithTitle("Uploading " + filepath.Base(args[1])).
					Start()
			},
			func(delta int64) {
				if bar != nil {
					bar.Add(int(delta))
				}
			},
		)

		proof, err := c.UploadBanProof(cmd.Context(), sdk.ProofUpload{
			BanID:    banID,
			Filename: filepath.Base(args[1]),
			Content:  f,
		}, progress)
		if bar != nil {
			_, _ = bar.Stop()
		}
		if err != nil {
			return cmdutil.Explain(err)
		}
		pterm.Success.Printf("Evidence #%d (%s) attached to ban #%d\n", proof.ID, proof.Type, banID)
		return nil
	},
}

var proofRmCmd = &cobra.Command{
	Use:   "rm <ban-id> <proof-id>",
	Short: "Delete evidence from a ban",
	Long: `Deletes evidence from a ban. Moderators can only delete evidence they attached;
administrators can delete any evidence.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		banID, err := parseID("ban", args[0])
		if err != nil {
			return err
		}
		proofID, err := parseID("proof", args[1])
		if err != nil {
			return err
		}
		c, err := cmdutil.Client(cmd.Context())
		if err != nil {
			return err
		}

		ctx, cancel := cmdutil.WithTimeout(cmd.Context())
		defer cancel()

		proofs, err := c.BanProofs(ctx, banID)
		if err != nil {
			return cmdutil.Explain(err)
		}
		var owner string
		found := false
		for _, p := range proofs {
			if p.ID == proofID {
				owner, found = p.AdminName, true
				break
			}
		}
		if !found {
			return fmt.Errorf("evidence #%d: %w", proofID, sdk.ErrNotFound)
		}
		if _, err := cmdutil.RequireOwnership(ctx, authz.BanProofDelete, owner, "delete this evidence"); err != nil {
			return err
		}

		if err := c.DeleteBanProof(ctx, proofID); err != nil {
			return cmdutil.Explain(err)
		}
		pterm.Success.Printf("Evidence #%d deleted\n", proofID)
		return nil
	},
}

// trackProgress sizes the display on the first report, since the total is the
// encoded request body rather than the file, and never advances past it.
func trackProgress(start func(total int64), advance func(delta int64)) sdk.ProgressFunc {
	started := false
	var reported int64
	return func(sent, total int64) {
		if !started {
			start(total)
			started = true
		}
		if sent > total {
			sent = total
		}
		if sent > reported {
			advance(sent - reported)
			reported = sent
		}
	}
}

func init() {
	proofAddCmd.Flags().StringVarP(&proofType, "type", "t", string(sdk.ProofImage), "Evidence type: image or video")
	proofCmd.AddCommand(proofAddCmd)
	proofCmd.AddCommand(proofUploadCmd)
	proofCmd.AddCommand(proofRmCmd)
}
