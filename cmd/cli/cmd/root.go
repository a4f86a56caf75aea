package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "tradectl",
	Short: "Tradectl is a command line tool for interacting with the tradeplane coordinator",
	Long: `tradectl is the command-line interface for the tradeplane distributed
trade-job platform.

Tradeplane accepts trade jobs (requests to hand a generated game item to an
end user through an automated game session) and routes each job to the worker
process serving the requested game variant.

Common workflows:

  Submit a trade:
    tradectl submit --owner user-42 --variant swsh --spec "Pikachu @ Light Ball"

  Check a trade's status:
    tradectl status <job-id>

  Cancel a queued trade:
    tradectl cancel <job-id> --owner user-42

  List a user's recent trades:
    tradectl list user-42

  Show discoverable worker instances:
    tradectl instances

Configuration:
  Set the coordinator endpoint via environment variables or a config file:
    TRADEPLANE_URL    Coordinator endpoint (default: http://localhost:8080)`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".tradectl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".tradectl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "TRADEPLANE_VARNAME"
	viper.SetEnvPrefix("TRADEPLANE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.tradectl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:8080", "Tradeplane Coordinator URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
}
