package cmd

import (
	"github.com/spf13/cobra"

	"github.com/user/riskcore/pkg/config"
	"github.com/user/riskcore/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:   "riskcore",
	Short: "Security-assessment ingestion and risk scoring",
	Long: `riskcore ingests security-assessment artifacts (Nmap XML, Nessus and
OpenVAS exports, or unstructured documents and images processed by an AI
extraction provider), normalizes them into an organization-scoped inventory
of assets, vulnerabilities and pentest findings, and computes composite
risk scores over it.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logCfg := config.LogConfig{}
		if cfg, err := config.LoadConfig(); err == nil {
			logCfg = cfg.Log
		}
		logging.Setup(DebugMode, logCfg)
	},
}

var DebugMode bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&DebugMode, "debug", false, "Enable debug logging")
}
