package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"kidplan-downloader/pkg/auth"
	"kidplan-downloader/pkg/config"
	"kidplan-downloader/pkg/kidplan"
	"kidplan-downloader/pkg/models"
	"kidplan-downloader/pkg/ui"
)

var (
	loginKid     int64
	loginKidName string
	skipVerify   bool
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Kidplan credentials",
	Long:  `Manage stored Kidplan credentials securely using the system keychain.`,
}

var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Store credentials for a Kidplan account",
	Long: `Store credentials for a Kidplan account in the system keychain.

The credentials are checked against Kidplan before they are saved, and the
chosen kindergarten is remembered with the account.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout [email]",
	Short: "Remove stored credentials",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogout,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored accounts",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	loginCmd.Flags().Int64Var(&loginKid, "kid", 0, "kindergarten id to remember with the account")
	loginCmd.Flags().StringVar(&loginKidName, "kid-name", "", "kindergarten name to remember with the account")
	loginCmd.Flags().BoolVar(&skipVerify, "no-verify", false, "store the credentials without contacting Kidplan")

	authCmd.AddCommand(loginCmd, logoutCmd, listCmd)
	rootCmd.AddCommand(authCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)

	email := ""
	if len(args) > 0 {
		email = args[0]
	} else {
		fmt.Print("Kidplan email: ")
		email, _ = reader.ReadString('\n')
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}

	password, err := readPassword(reader, "Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}

	account := &auth.Account{
		Email:            email,
		Password:         password,
		KindergartenID:   loginKid,
		KindergartenName: loginKidName,
	}

	if !skipVerify {
		kid, err := verifyAccount(cmd, account.Credentials())
		if err != nil {
			return err
		}
		account.KindergartenID = kid.ID
		account.KindergartenName = kid.Name
	}

	if err := manager.Store(account); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	ui.PrintSuccess(fmt.Sprintf("✓ Credentials saved for %s", email))
	if account.KindergartenName != "" {
		ui.PrintInfo("Kindergarten", fmt.Sprintf("%s (%d)", account.KindergartenName, account.KindergartenID))
	}
	return nil
}

// verifyAccount checks the credentials and resolves the kindergarten to
// remember
func verifyAccount(cmd *cobra.Command, creds models.Credentials) (models.Kindergarten, error) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	log, err := initLogger(cfg)
	if err != nil {
		return models.Kindergarten{}, err
	}

	client, err := kidplan.NewClientFromConfig(cfg, log)
	if err != nil {
		return models.Kindergarten{}, err
	}

	ui.PrintInfo("Verifying", creds.Email)
	kids, err := client.FetchKindergartens(cmd.Context(), creds)
	if err != nil {
		return models.Kindergarten{}, fmt.Errorf("could not verify credentials: %w", err)
	}
	return kidplan.SelectKindergarten(kids, loginKid, loginKidName)
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	email := ""
	if len(args) > 0 {
		email = args[0]
	} else {
		accounts, err := manager.List()
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
		switch len(accounts) {
		case 0:
			ui.PrintWarning("No stored accounts")
			return nil
		case 1:
			email = accounts[0].Email
		default:
			return fmt.Errorf("several accounts are stored; name the one to remove")
		}
	}

	if err := manager.Delete(email); err != nil {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}

	ui.PrintSuccess(fmt.Sprintf("✓ Removed credentials for %s", email))
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
		ui.PrintWarning("No stored accounts")
		fmt.Println("Use 'kidplan auth login' to add an account")
		return nil
	}

	fmt.Println("Stored accounts:")
	for _, account := range accounts {
		line := "  • " + account.Email
		if account.KindergartenName != "" {
			line += fmt.Sprintf(" [%s]", account.KindergartenName)
		}
		if !account.LastModified.IsZero() {
			line += " (updated " + account.LastModified.Format(time.DateOnly) + ")"
		}
		fmt.Println(line)
	}
	return nil
}

// readPassword reads a password without echo when stdin is a terminal
func readPassword(reader *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	password, err := reader.ReadString('\n')
	if err != nil && password == "" {
		return "", err
	}
	return strings.TrimSpace(password), nil
}
