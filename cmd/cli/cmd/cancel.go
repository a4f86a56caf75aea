package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel [job_id]",
	Short: "Cancel a queued trade job",
	Long: `Request cancellation of a trade job. Only jobs that are still queued or
searching can be cancelled, and only by their owner.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		owner, _ := cmd.Flags().GetString("owner")
		if owner == "" {
			cmd.Println("Error: --owner is required")
			return
		}

		client := NewTradeClient(viper.GetString("url"))
		snap, err := client.CancelTrade(args[0], owner)
		if err != nil {
			cmd.Printf("Cancel failed: %v\n", err)
			return
		}
		cmd.Printf("Trade %s is now %s\n", snap.JobID, colorizeStatus(snap.Status))
	},
}

func init() {
	cancelCmd.Flags().String("owner", "", "ID of the requesting user")
	rootCmd.AddCommand(cancelCmd)
}
