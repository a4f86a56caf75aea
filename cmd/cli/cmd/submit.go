package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tradeplane/pkg/api"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a trade job",
	Long: `Submit a new trade job to the coordinator.

The item specification is passed inline with --spec or read from a file with
--spec-file. When --code is omitted, an 8-digit exchange code is generated.

Example:
  tradectl submit --owner user-42 --variant swsh --spec "Pikachu @ Light Ball"
  tradectl submit --owner user-42 --variant sv --spec-file team.txt --code 00001234`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		owner, _ := flags.GetString("owner")
		variant, _ := flags.GetString("variant")
		spec, _ := flags.GetString("spec")
		specFile, _ := flags.GetString("spec-file")
		code, _ := flags.GetString("code")

		if owner == "" {
			cmd.Println("Error: --owner is required")
			return
		}
		if variant == "" {
			cmd.Println("Error: --variant is required")
			return
		}
		if spec == "" && specFile != "" {
			raw, err := os.ReadFile(specFile)
			if err != nil {
				cmd.Printf("Failed to read spec file: %v\n", err)
				return
			}
			spec = string(raw)
		}
		if spec == "" {
			cmd.Println("Error: --spec or --spec-file is required")
			return
		}

		client := NewTradeClient(viper.GetString("url"))
		snap, err := client.SubmitTrade(api.SubmitTradeRequest{
			OwnerID:      owner,
			GameVariant:  variant,
			ItemSpec:     spec,
			ExchangeCode: code,
		})
		if err != nil {
			cmd.Printf("Submit failed: %v\n", err)
			return
		}

		cmd.Printf("Trade submitted.\n")
		cmd.Printf("  Job ID:        %s\n", snap.JobID)
		cmd.Printf("  Status:        %s\n", colorizeStatus(snap.Status))
		cmd.Printf("  Exchange code: %s\n", snap.ExchangeCode)
		if snap.QueuePosition > 0 {
			cmd.Printf("  Queue:         position %d, ~%d min wait\n", snap.QueuePosition, snap.EstimatedWaitMinutes)
		}
		if snap.Error != "" {
			cmd.Printf("  Error:         %s\n", snap.Error)
		}
	},
}

func init() {
	submitCmd.Flags().String("owner", "", "ID of the requesting user")
	submitCmd.Flags().String("variant", "", "Game variant (swsh, bdsp, pla, lgpe, sv)")
	submitCmd.Flags().String("spec", "", "Item specification text")
	submitCmd.Flags().String("spec-file", "", "File containing the item specification")
	submitCmd.Flags().String("code", "", "8-digit exchange code (generated when omitted)")
	rootCmd.AddCommand(submitCmd)
}
