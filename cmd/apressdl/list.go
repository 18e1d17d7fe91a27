package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"apressdl/pkg/scraper"
	"apressdl/pkg/ui"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list <email>",
	Short: "List the books in your account without downloading",
	Long: `Log into the account and print every downloadable product with its
available formats, without writing anything to disk.`,
	Example: `  apressdl list user@example.com`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runListBooks(cmd, args)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runListBooks(cmd *cobra.Command, args []string) {
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

	products, err := s.ListProducts(ctx)
	if err != nil {
		exitForError(ctx, err, log)
	}

	if len(products) == 0 {
		ui.PrintInfo("No books found", "the account has no downloadable products")
		return
	}

	fmt.Printf("%d book(s) in your account:\n\n", len(products))
	for i, product := range products {
		formats := strings.Join(product.Formats(), ", ")
		if formats == "" {
			formats = "no downloads available"
		}
		fmt.Printf("%3d. %s [%s]\n", i+1, strings.TrimSpace(product.Title), formats)
	}
}
