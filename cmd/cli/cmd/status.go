package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tradeplane/pkg/api"
)

var statusCmd = &cobra.Command{
	Use:   "status [job_id]",
	Short: "Get status of a trade job",
	Long:  `Retrieve the current snapshot for a trade job: its lifecycle state, exchange code, queue estimate and progress log.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewTradeClient(viper.GetString("url"))
		snap, err := client.GetTrade(args[0])
		if err != nil {
			cmd.Printf("Status failed: %v\n", err)
			return
		}
		printStatus(cmd, snap)
	},
}

func printStatus(cmd *cobra.Command, snap *api.TradeSnapshot) {
	icon := statusIcon(snap.Status)
	cmd.Printf("%s %sTrade Details%s\n", icon, colorBold, colorReset)
	cmd.Println("──────────────────────────────")

	cmd.Printf("%sJob ID:%s    %s\n", colorDim, colorReset, snap.JobID)
	cmd.Printf("%sOwner:%s     %s\n", colorDim, colorReset, snap.OwnerID)
	cmd.Printf("%sVariant:%s   %s\n", colorDim, colorReset, snap.GameVariant)
	cmd.Printf("%sStatus:%s    %s\n", colorDim, colorReset, colorizeStatus(snap.Status))
	cmd.Printf("%sCode:%s      %s\n", colorDim, colorReset, snap.ExchangeCode)

	if snap.QueuePosition > 0 {
		cmd.Printf("%sQueue:%s     position %d (~%d min)\n", colorDim, colorReset, snap.QueuePosition, snap.EstimatedWaitMinutes)
	}
	if snap.Error != "" {
		cmd.Printf("%sError:%s     %s%s%s\n", colorDim, colorReset, colorRed, snap.Error, colorReset)
	}

	cmd.Printf("%sSubmitted:%s %s\n", colorDim, colorReset, formatTime(snap.SubmittedAt))
	cmd.Printf("%sUpdated:%s   %s\n", colorDim, colorReset, formatTime(snap.LastUpdatedAt))

	if len(snap.Messages) > 0 {
		cmd.Println()
		cmd.Printf("%sProgress:%s\n", colorBold, colorReset)
		for _, line := range snap.Messages {
			cmd.Printf("  • %s\n", line)
		}
	}
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func statusIcon(status string) string {
	switch status {
	case "completed":
		return colorGreen + "✓" + colorReset
	case "failed":
		return colorRed + "✗" + colorReset
	case "cancelled":
		return colorDim + "⊘" + colorReset
	case "initializing", "searching", "trading":
		return colorYellow + "⏳" + colorReset
	case "queued":
		return colorCyan + "◯" + colorReset
	default:
		return "•"
	}
}

func colorizeStatus(status string) string {
	icon := statusIcon(status)
	switch status {
	case "completed":
		return icon + " " + colorGreen + status + colorReset
	case "failed":
		return icon + " " + colorRed + status + colorReset
	case "initializing", "searching", "trading":
		return icon + " " + colorYellow + status + colorReset
	case "queued":
		return icon + " " + colorCyan + status + colorReset
	default:
		return status
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s (%s ago)", t.Format("Mon, 02 Jan 2006 15:04:05 MST"), relativeTime(t))
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
