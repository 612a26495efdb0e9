package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// archiveCmd groups commands over archived model output and digests
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Browse archived analysis output and digests",
}

// archiveListCmd lists archived blobs
var archiveListCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List archived blobs, optionally under a prefix such as analysis/ or digests/weekly/",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runArchiveList,
}

// archiveGetCmd prints one archived blob
var archiveGetCmd = &cobra.Command{
	Use:   "get <name>",
	Short: "Print an archived blob",
	Args:  cobra.ExactArgs(1),
	RunE:  runArchiveGet,
}

func runArchiveList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	archive, err := openArchive(ctx)
	if err != nil {
		return err
	}

	prefix := ""
	if len(args) == 1 {
		prefix = args[0]
	}

	names, err := archive.List(ctx, prefix)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

func runArchiveGet(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	archive, err := openArchive(ctx)
	if err != nil {
		return err
	}

	data, err := archive.Retrieve(ctx, args[0])
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
