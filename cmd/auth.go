package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opennotif/inboxiq/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize a Google account",
		Long: `Authorize inboxiq to access a Google account.

Prints an authorization URL, waits for the authorization code, and caches
the resulting OAuth token for the account. Run once per account; tokens
are refreshed automatically afterwards.

Requires the GOOGLE_OAUTH_CLIENT_ID and GOOGLE_OAUTH_CLIENT_SECRET
environment variables.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuth(cmd.Context(), account)
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Google account name to authorize (e.g. 'work', 'personal')")

	return cmd
}

func runAuth(ctx context.Context, account string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if google.HasTokenForAccount(account) {
		fmt.Printf("Account %q is already authorized. Continuing will replace its token.\n\n", account)
	}

	fmt.Println("Visit this URL in your browser and sign in with your Google account:")
	fmt.Printf("\n  %s\n\n", google.GetAuthURL())
	fmt.Print("Paste the authorization code here: ")

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read authorization code: %w", err)
	}

	authCode := strings.TrimSpace(line)
	if authCode == "" {
		return fmt.Errorf("no authorization code provided")
	}

	if err := google.SaveTokenForAccount(ctx, account, authCode); err != nil {
		return fmt.Errorf("failed to save token for account %s: %w", account, err)
	}

	fmt.Printf("\nAccount %q authorized. Tokens will be refreshed automatically.\n", account)
	return nil
}
