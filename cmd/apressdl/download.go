package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"apressdl/pkg/auth"
	"apressdl/pkg/config"
	"apressdl/pkg/logger"
	"apressdl/pkg/scraper"
	"apressdl/pkg/ui"
)

var (
	// Download command flags
	outputDir   string
	overwrite   bool
	pageLimit   int
	rateLimit   int
	baseURL     string
	password    string
	accountName string
	listOnly    bool
)

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download <email>",
	Short: "Download all e-books from your account",
	Long: `Log into the Apress customer account for the given email address and
download every available format of every product in the account.

Each book gets its own directory under the output path, named after the
book's title, with one file per format inside. Files that already exist
are skipped unless --overwrite is given, so re-running after an
interruption only fetches what is missing.

The password is resolved in order from the --password flag, a stored
account ('apressdl auth login'), the APRESSDL_PASSWORD environment
variable, and finally an interactive prompt.`,
	Example: `  # Download everything into ./ebooks
  apressdl download user@example.com

  # Download into a specific directory
  apressdl download user@example.com --path ~/books/apress

  # Re-download files that already exist
  apressdl download user@example.com --overwrite

  # Use a stored account
  apressdl download user@example.com --account user@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runDownload(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVar(&outputDir, "path", "", "output directory for downloads (default: ./ebooks)")
	downloadCmd.Flags().BoolVarP(&overwrite, "overwrite", "o", false, "re-download files that already exist")
	downloadCmd.Flags().IntVar(&pageLimit, "limit", 0, "products requested per listing page")
	downloadCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "requests per minute")
	downloadCmd.Flags().StringVar(&baseURL, "base-url", "", "portal base URL")
	downloadCmd.Flags().StringVar(&password, "password", "", "account password (prefer stored credentials)")
	downloadCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
	downloadCmd.Flags().BoolVar(&listOnly, "list", false, "only list the books, download nothing")

	// Same flags on the root command so a bare email works without the
	// download subcommand
	rootCmd.Flags().StringVar(&outputDir, "path", "", "output directory for downloads (default: ./ebooks)")
	rootCmd.Flags().BoolVarP(&overwrite, "overwrite", "o", false, "re-download files that already exist")
	rootCmd.Flags().IntVar(&pageLimit, "limit", 0, "products requested per listing page")
	rootCmd.Flags().IntVar(&rateLimit, "rate-limit", 0, "requests per minute")
	rootCmd.Flags().StringVar(&baseURL, "base-url", "", "portal base URL")
	rootCmd.Flags().StringVar(&password, "password", "", "account password (prefer stored credentials)")
	rootCmd.Flags().StringVarP(&accountName, "account", "a", "", "use specific stored account")
	rootCmd.Flags().BoolVar(&listOnly, "list", false, "only list the books, download nothing")
}

func runDownload(cmd *cobra.Command, args []string) {
	if listOnly {
		runListBooks(cmd, args)
		return
	}

	username := strings.TrimSpace(args[0])

	cfg, log := loadRunConfig()

	pass, err := resolvePassword(username)
	if err != nil {
		ui.PrintError("No password available", err.Error())
		os.Exit(exitAuth)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := scraper.New(cfg, log)
	if err != nil {
		ui.PrintError("Failed to initialize", err.Error())
		os.Exit(exitInterrupted)
	}

	if err := s.Login(ctx, username, pass); err != nil {
		if errors.Is(err, scraper.ErrAuthFailed) {
			ui.PrintError("Login failed", "check your email address and password")
			os.Exit(exitAuth)
		}
		exitForError(ctx, err, log)
	}

	if err := s.Run(ctx); err != nil {
		exitForError(ctx, err, log)
	}

	log.Info("all downloads finished")
	ui.PrintSuccess("All books downloaded")
}

// loadRunConfig builds the effective configuration from flags, environment
// and config file, and initializes the logger from it.
func loadRunConfig() (*config.Config, logger.Logger) {
	flags := make(map[string]interface{})
	if outputDir != "" {
		flags["path"] = outputDir
	}
	if overwrite {
		flags["overwrite"] = true
	}
	if pageLimit > 0 {
		flags["limit"] = pageLimit
	}
	if rateLimit > 0 {
		flags["rate-limit"] = rateLimit
	}
	if baseURL != "" {
		flags["base-url"] = baseURL
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(exitInterrupted)
	}

	// Quiet mode silences the log output entirely; errors still reach
	// the user through the terminal printer.
	if quiet {
		cfg.Logging.Level = "disabled"
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logger", err.Error())
		os.Exit(exitInterrupted)
	}

	return cfg, logger.GetLogger()
}

// resolvePassword finds the account password: explicit flag first, then
// stored credentials, then an interactive prompt.
func resolvePassword(username string) (string, error) {
	if password != "" {
		return password, nil
	}

	if manager, err := auth.NewManager(); err == nil {
		lookup := accountName
		if lookup == "" {
			lookup = username
		}
		if account, err := manager.Retrieve(lookup); err == nil {
			ui.PrintInfo("Using stored credentials", account.Username)
			return account.Password, nil
		}
		if accountName != "" {
			return "", errors.New("stored account not found: " + accountName)
		}
	}

	return promptPassword("Password for " + username + ": ")
}

// exitForError maps a run error to the process exit code. Called with a
// non-nil error; does not return.
func exitForError(ctx context.Context, err error, log logger.Logger) {
	switch {
	case errors.Is(err, context.Canceled) || ctx.Err() != nil:
		log.Warn("interrupted, exiting")
		ui.PrintWarning("Interrupted")
		os.Exit(exitInterrupted)
	case errors.Is(err, scraper.ErrDestinationUnusable):
		ui.PrintError("Output path unusable", err.Error())
		os.Exit(exitDestination)
	case errors.Is(err, scraper.ErrAuthFailed):
		ui.PrintError("Login failed", err.Error())
		os.Exit(exitAuth)
	default:
		log.WithError(err).Error("download run failed")
		ui.PrintError("Download failed", err.Error())
		os.Exit(exitInterrupted)
	}
}
