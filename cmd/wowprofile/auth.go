package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"wowprofile/pkg/auth"
	"wowprofile/pkg/battlenet"
	"wowprofile/pkg/config"
	"wowprofile/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Battle.net API client credentials",
	Long: `Manage stored Battle.net API client credentials.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables WOWPROFILE_CLIENT_ID / WOWPROFILE_CLIENT_SECRET (read-only)

Never share your client secret or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store API client credentials securely",
	Long: `Store a Battle.net API client ID and secret in the system keychain or an
encrypted file.

Without a name the credentials are stored as the "default" account, which
'wowprofile generate' uses when no --account is given.`,
	Example: `  # Interactive login
  wowprofile auth login

  # Store a second client under a name
  wowprofile auth login guild-bot`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// removeCmd represents the auth remove command
var removeCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"logout"},
	Short:   "Remove stored credentials",
	Args:    cobra.ExactArgs(1),
	RunE:    runRemove,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored accounts with the client secret masked.`,
	RunE:  runList,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which credentials generate would use",
	RunE:  runStatus,
}

var loginRegion string

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(removeCmd)
	authCmd.AddCommand(listCmd)
	authCmd.AddCommand(statusCmd)

	loginCmd.Flags().StringVar(&loginRegion, "region", "", "region to use with these credentials (us, eu, kr, tw)")
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := auth.DefaultAccount
	if len(args) > 0 {
		name = strings.TrimSpace(args[0])
	}

	reader := bufio.NewReader(os.Stdin)

	auth.ShowClientSetupGuide()

	if existing, _ := manager.Retrieve(name); existing != nil {
		fmt.Printf("⚠️  Account '%s' already exists. Update credentials? (y/N): ", name)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	fmt.Print("🆔 Client ID: ")
	clientID, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read client ID: %w", err)
	}
	clientID = strings.TrimSpace(clientID)

	fmt.Print("🔐 Client secret (hidden): ")
	clientSecret, err := readPassword(reader)
	if err != nil {
		return fmt.Errorf("failed to read client secret: %w", err)
	}

	region := loginRegion
	if region != "" {
		parsed, ok := battlenet.ParseRegion(region)
		if !ok {
			ui.PrintWarning("Unknown region, using", string(parsed))
		}
		region = string(parsed)
	}

	account := &auth.Account{
		Name:         name,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Region:       region,
		LastModified: time.Now(),
	}

	fmt.Println("\n💾 Storing credentials securely...")
	if err := manager.Store(account); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	ui.PrintSuccess(fmt.Sprintf("Account saved: %s", name))
	fmt.Println("\n📖 Next:")
	if name == auth.DefaultAccount {
		fmt.Println(`   $ wowprofile generate --realm "Area 52" --character Thrall`)
	} else {
		fmt.Printf("   $ wowprofile generate --realm \"Area 52\" --character Thrall --account %s\n", name)
	}
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	name := args[0]
	if err := manager.Delete(name); err != nil {
		return fmt.Errorf("failed to remove account: %w", err)
	}
	ui.PrintSuccess("Account removed: " + name)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'wowprofile auth login' to add one")
		return nil
	}

	ui.PrintHighlight("Stored Accounts")
	fmt.Println()

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("%d. %s\n", i+1, sanitized.Name)
		fmt.Printf("   Client ID: %s\n", sanitized.ClientID)
		fmt.Printf("   Client secret: %s\n", sanitized.ClientSecret)
		if sanitized.Region != "" {
			fmt.Printf("   Region: %s\n", sanitized.Region)
		}
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, changedFlags(cmd.Flags()))
	if err != nil {
		return err
	}

	source := "configuration"
	if cfg.BattleNet.ClientID == "" || cfg.BattleNet.ClientSecret == "" {
		manager, err := auth.NewManager()
		if err != nil {
			return fmt.Errorf("failed to initialize credential manager: %w", err)
		}
		account, err := manager.RetrieveDefault()
		if err != nil {
			ui.PrintWarning("No credentials found")
			auth.ShowQuickSetupGuide()
			return nil
		}
		source = "stored account " + account.Name
		cfg.BattleNet.ClientID = account.ClientID
		cfg.BattleNet.ClientSecret = account.ClientSecret
	}

	masked := cfg.Masked()
	ui.PrintInfo("Source", source)
	ui.PrintInfo("Client ID", masked.BattleNet.ClientID)
	ui.PrintInfo("Client secret", masked.BattleNet.ClientSecret)
	return nil
}

// readPassword reads a secret from stdin without echoing when stdin is a
// terminal.
func readPassword(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(password)), nil
		}
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
