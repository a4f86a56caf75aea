package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List discoverable worker instances",
	Long:  `List the sibling worker processes the coordinator can currently reach, with the game variant each one serves.`,
	Run: func(cmd *cobra.Command, args []string) {
		client := NewTradeClient(viper.GetString("url"))
		instances, err := client.ListInstances()
		if err != nil {
			cmd.Printf("Instances failed: %v\n", err)
			return
		}
		if len(instances) == 0 {
			cmd.Println("No instances discovered.")
			return
		}

		cmd.Printf("%-8s %-12s %s\n", "PORT", "ROLE", "VARIANT")
		for _, inst := range instances {
			cmd.Printf("%-8d %-12s %s\n", inst.Port, inst.Role, inst.GameVariant)
		}
	},
}

func init() {
	rootCmd.AddCommand(instancesCmd)
}
