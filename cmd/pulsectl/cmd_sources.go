package main

import (
	"fmt"

	"github.com/pulseboard/social-listener/internal/app"
	"github.com/pulseboard/social-listener/internal/config"
	"github.com/pulseboard/social-listener/internal/database"
	"github.com/spf13/cobra"
)

// sourcesCmd groups collector commands
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Inspect the platform collectors",
}

// sourcesCheckCmd fetches from every collector without storing anything
var sourcesCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Test connectivity of every collector",
	RunE:  runSourcesCheck,
}

// migrateCmd applies pending schema migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE:  runMigrate,
}

func runSourcesCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	w := cmd.OutOrStdout()
	failed := 0
	for _, src := range app.NewSources(cfg) {
		fmt.Fprintf(w, "Testing %s... ", src.GetName())

		if !src.IsEnabled() {
			fmt.Fprintln(w, "DISABLED (no keywords or targets configured)")
			continue
		}

		posts, err := src.FetchPosts(ctx)
		if err != nil {
			failed++
			fmt.Fprintf(w, "ERROR: %v\n", err)
			continue
		}

		fmt.Fprintf(w, "OK (%d posts)\n", len(posts))
		if len(posts) > 0 {
			fmt.Fprintf(w, "    sample: %q\n", sample(posts[0].Content))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d collectors failed", failed)
	}
	return nil
}

func sample(content string) string {
	runes := []rune(content)
	if len(runes) > 80 {
		return string(runes[:80]) + "..."
	}
	return content
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := database.Migrate(ctx, cfg.DatabaseURL); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
	return nil
}
