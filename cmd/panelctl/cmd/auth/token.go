package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/minestax-uz/web/cmd/panelctl/internal/cmdutil"
	"github.com/spf13/cobra"
)

var shellFormat string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Export the current access token for scripts",
	Long: `Prints the stored access token as a PANEL_TOKEN environment assignment.

Supported shells:
  - posix (bash, zsh, sh) - default
  - fish
  - powershell

Usage:
  # POSIX shells (bash/zsh/sh)
  eval $(panelctl auth token)

  # Fish shell
  eval (panelctl auth token --shell fish)

  # PowerShell
  panelctl auth token --shell powershell | Invoke-Expression

Commands run with PANEL_TOKEN set use that token instead of the credential store.
The exported token cannot be refreshed; log in again once it expires.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := session(cmd.Context())
		if err != nil {
			return err
		}
		if _, ok := s.CurrentPrincipal(cmd.Context()); !ok {
			return cmdutil.ErrLoginRequired
		}
		token, err := s.TokenSource().Token()
		if err != nil {
			return cmdutil.Explain(err)
		}

		format := strings.ToLower(shellFormat)
		if format == "" {
			format = detectShell()
		}

		line, err := exportLine(format, token.AccessToken)
		if err != nil {
			return err
		}
		if isTerminal(os.Stdout) {
			fmt.Fprintln(os.Stderr, "# Run this command to configure your shell:")
			fmt.Fprintln(os.Stderr, "#   eval $(panelctl auth token)")
			fmt.Fprintln(os.Stderr, "")
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&shellFormat, "shell", "", "Shell format: posix, fish, powershell (auto-detected if not specified)")
}

func exportLine(format, token string) (string, error) {
	switch format {
	case "posix", "bash", "zsh", "sh":
		return fmt.Sprintf("export PANEL_TOKEN=%q", token), nil
	case "fish":
		return fmt.Sprintf("set -x PANEL_TOKEN %q", token), nil
	case "powershell", "pwsh", "ps1":
		return fmt.Sprintf("$env:PANEL_TOKEN=%q", token), nil
	default:
		return "", fmt.Errorf("unsupported shell format: %s\n\nSupported formats: posix, fish, powershell", format)
	}
}

// detectShell attempts to detect the current shell from the SHELL environment variable
func detectShell() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		return "posix"
	}

	switch filepath.Base(shell) {
	case "fish":
		return "fish"
	case "pwsh", "powershell":
		return "powershell"
	default:
		return "posix"
	}
}

// isTerminal checks if the given file is a terminal (TTY)
func isTerminal(f *os.File) bool {
	fileInfo, err := f.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
