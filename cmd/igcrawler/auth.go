package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the Instagram session",
	Long: `Manage the stored Instagram session.

The crawler reuses a logged-in browser session. Depending on the
configured backend the cookies are stored in the system keychain, an
encrypted file, or a plain session file.

Never share your session cookies or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Store and verify session cookies",
	Long: `Prompt for the sessionid and csrftoken cookie values, verify them
against Instagram, and persist the session for later runs.

To get these values:
1. Log into Instagram in your browser
2. Open Developer Tools (F12)
3. Go to Application/Storage > Cookies
4. Find and copy the sessionid and csrftoken values`,
	Example: `  # Interactive login
  igcrawler auth login

  # Login and record the account name alongside the session
  igcrawler auth login myusername`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	RunE:  runLogout,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored session",
	Long:  `Show the stored session with sanitized cookie values, without contacting Instagram.`,
	RunE:  runStatus,
}

// testCmd represents the auth test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Verify the stored session against Instagram",
	RunE:  runTest,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(testCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	client, store, err := newClient()
	if err != nil {
		return err
	}

	var username string
	if len(args) > 0 {
		username = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Enter your cookie values (they will be hidden as you type):")
	fmt.Println()

	fmt.Print("sessionid cookie value: ")
	sessionID, err := readSecret(reader)
	if err != nil {
		return fmt.Errorf("failed to read session id: %w", err)
	}

	fmt.Print("csrftoken cookie value: ")
	csrfToken, err := readSecret(reader)
	if err != nil {
		return fmt.Errorf("failed to read csrf token: %w", err)
	}

	fmt.Print("x-ig-www-claim header value (press Enter to skip): ")
	claimToken, _ := reader.ReadString('\n')
	claimToken = strings.TrimSpace(claimToken)

	fmt.Println("\nVerifying session...")
	if err := client.SetCredentials(sessionID, csrfToken, claimToken); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if username != "" {
		creds := client.Credentials()
		creds.Username = username
		creds.SavedAt = time.Now()
		if err := store.Save(creds); err != nil {
			return fmt.Errorf("failed to persist session: %w", err)
		}
	}

	fmt.Println("Session verified and stored.")
	fmt.Println("\nQuick start:")
	fmt.Println("  igcrawler hashtag streetphotography")
	fmt.Println("  igcrawler comments <media-id>")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	if err := client.Logout(); err != nil {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	fmt.Println("Session removed.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	_, store, err := newClient()
	if err != nil {
		return err
	}

	creds, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to read session store: %w", err)
	}
	if creds == nil || !creds.Usable() {
		fmt.Println("No stored session. Run 'igcrawler auth login' first.")
		return nil
	}

	fmt.Println("Stored session:")
	if creds.Username != "" {
		fmt.Printf("  Username:   %s\n", creds.Username)
	}
	fmt.Printf("  Session ID: %s\n", sanitizeSecret(creds.SessionID))
	fmt.Printf("  CSRF Token: %s\n", sanitizeSecret(creds.CSRFToken))
	if creds.ClaimToken != "" {
		fmt.Printf("  Claim:      %s\n", sanitizeSecret(creds.ClaimToken))
	}
	if !creds.SavedAt.IsZero() {
		fmt.Printf("  Saved:      %s\n", creds.SavedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runTest(cmd *cobra.Command, args []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	if !client.Initialize() {
		return fmt.Errorf("no valid session: run 'igcrawler auth login' first")
	}
	fmt.Println("Session is valid.")
	return nil
}

// readSecret reads a value from stdin without echoing
func readSecret(reader *bufio.Reader) (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	// Fallback to regular input
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// sanitizeSecret keeps only the edges of a secret for display
func sanitizeSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
