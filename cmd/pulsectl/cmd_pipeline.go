package main

import (
	"encoding/json"
	"fmt"

	"github.com/pulseboard/social-listener/internal/models"
	"github.com/spf13/cobra"
)

var digestType string

// pipelineCmd runs one collection and analysis cycle
var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run one collect, analyze and alert cycle",
	RunE:  runPipeline,
}

// digestCmd generates a narrative digest
var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Generate a daily or weekly digest",
	Long: `Generate a narrative digest from the current dashboard snapshot,
store it and print its markdown content.`,
	RunE: runDigest,
}

func init() {
	digestCmd.Flags().StringVarP(&digestType, "type", "t", string(models.DigestDaily), "Digest type (daily or weekly)")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	application, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	result, err := application.Pipeline.RunPipeline(ctx)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if len(result.Errors) > 0 {
		return fmt.Errorf("pipeline finished with %d stage errors", len(result.Errors))
	}
	return nil
}

func runDigest(cmd *cobra.Command, args []string) error {
	dt, ok := models.ParseDigestType(digestType)
	if !ok {
		return fmt.Errorf("invalid digest type %q: use daily or weekly", digestType)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	application, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	digest, err := application.Pipeline.RunDigest(ctx, dt)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Digest %s (%s, %s to %s)\n\n", digest.ID, digest.Type,
		digest.PeriodStart.Format("Jan 2 15:04"), digest.PeriodEnd.Format("Jan 2 15:04 MST"))
	fmt.Fprintln(w, digest.Content)
	return nil
}
