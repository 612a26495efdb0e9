package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// alertsCmd groups alert commands
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Inspect and acknowledge alerts",
}

// alertsListCmd prints unacknowledged alerts, most severe first
var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active alerts",
	RunE:  runAlertsList,
}

// alertsAckCmd acknowledges an alert
var alertsAckCmd = &cobra.Command{
	Use:   "ack <alert-id>",
	Short: "Acknowledge an alert",
	Args:  cobra.ExactArgs(1),
	RunE:  runAlertsAck,
}

func runAlertsList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	application, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	alerts, err := application.Pipeline.GetActiveAlerts(ctx)
	if err != nil {
		return err
	}

	if len(alerts) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No active alerts")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEVERITY\tTYPE\tCREATED\tTITLE")
	for _, a := range alerts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.Severity, a.Type,
			a.CreatedAt.Format("2006-01-02 15:04"), a.Title)
	}
	return tw.Flush()
}

func runAlertsAck(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	application, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.Pipeline.AcknowledgeAlert(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Acknowledged %s\n", args[0])
	return nil
}
