package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listCmd = &cobra.Command{
	Use:   "list [owner_id]",
	Short: "List a user's recent trade jobs",
	Long:  `List the 20 most recent trade jobs submitted by a user, newest first.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewTradeClient(viper.GetString("url"))
		trades, err := client.ListTrades(args[0])
		if err != nil {
			cmd.Printf("List failed: %v\n", err)
			return
		}
		if len(trades) == 0 {
			cmd.Println("No trades found.")
			return
		}

		for _, snap := range trades {
			cmd.Printf("%s  %s  %-8s  %s\n",
				snap.JobID, snap.SubmittedAt.Format("2006-01-02 15:04:05"),
				snap.GameVariant, colorizeStatus(snap.Status))
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
