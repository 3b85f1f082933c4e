package bans

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// BansCmd is the parent command for ban review
var BansCmd = &cobra.Command{
	Use:   "bans",
	Short: "Review bans, their evidence and moderation comments",
}

func init() {
	BansCmd.AddCommand(listCmd)
	BansCmd.AddCommand(showCmd)
	BansCmd.AddCommand(commentCmd)
	BansCmd.AddCommand(uncommentCmd)
	BansCmd.AddCommand(proofCmd)
}

func parseID(kind, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, s)
	}
	return id, nil
}
