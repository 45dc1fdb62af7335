package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dukerupert/flipcart/internal/auth"
	"github.com/dukerupert/flipcart/internal/crypto"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
	Long:  `Hash the admin password. Without an argument the password is read from the first line of stdin.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHashPassword,
}

var genKeyCmd = &cobra.Command{
	Use:   "gen-key",
	Short: "Print a new SETTINGS_KEY",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		key, err := crypto.GenerateKey()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), crypto.EncodeKeyBase64(key))
		return nil
	},
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "  Error: %v\n", err)
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
