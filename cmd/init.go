package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ziadkadry99/pathfit/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize pathfit configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the target frame and asset directories and generates a .pathfit.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
