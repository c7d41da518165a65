package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/riskcore/pkg/config"
	"github.com/user/riskcore/pkg/risk"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute and snapshot the organization's risk score",
	Run: func(cmd *cobra.Command, args []string) {
		orgID, _ := cmd.Flags().GetString("org")

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			return
		}

		ctx := context.Background()
		st, orgID, err := openStore(ctx, cfg, orgID)
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			return
		}

		engine := risk.NewEngine(st)
		result, err := engine.Calculate(ctx, orgID)
		if err != nil {
			fmt.Printf("Error calculating risk score: %v\n", err)
			return
		}

		snapshot, err := engine.Save(ctx, orgID, result)
		if err != nil {
			fmt.Printf("Error saving snapshot: %v\n", err)
			return
		}

		fmt.Printf("Risk Score for %s\n", orgID)
		fmt.Println("--------------------------------------------------")
		fmt.Printf("Overall:        %d/100\n", result.OverallScore)
		fmt.Printf("Attack Surface: %.1f\n", result.AttackSurfaceScore)
		fmt.Printf("Vulnerability:  %.1f\n", result.VulnerabilityScore)
		fmt.Printf("Pentest:        %.1f\n", result.PentestScore)
		fmt.Println("--------------------------------------------------")
		b := result.Breakdown
		fmt.Printf("Assets: %d (%d exposed)  Vulns: %d critical, %d high, %d medium, %d low\n",
			b.TotalAssets, b.ExposedAssets, b.CriticalVulns, b.HighVulns, b.MediumVulns, b.LowVulns)
		fmt.Printf("Snapshot saved at %s\n", snapshot.CalculatedDate.Format("2006-01-02 15:04:05"))
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent risk-score snapshots, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		orgID, _ := cmd.Flags().GetString("org")
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := config.LoadConfig()
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			return
		}

		ctx := context.Background()
		st, orgID, err := openStore(ctx, cfg, orgID)
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			return
		}

		snapshots, err := risk.NewEngine(st).History(ctx, orgID, limit)
		if err != nil {
			fmt.Printf("Error loading history: %v\n", err)
			return
		}
		if len(snapshots) == 0 {
			fmt.Println("No snapshots yet. Run 'riskcore score' first.")
			return
		}

		fmt.Printf("Risk history for %s:\n", orgID)
		for _, s := range snapshots {
			fmt.Printf("  %s  overall=%3d  surface=%5.1f  vuln=%5.1f  pentest=%5.1f\n",
				s.CalculatedDate.Format("2006-01-02 15:04"),
				s.OverallScore, s.AttackSurfaceScore, s.VulnerabilityScore, s.PentestScore)
		}
	},
}

func init() {
	scoreCmd.Flags().String("org", "", "Organization ID (defaults to the demo organization)")
	historyCmd.Flags().String("org", "", "Organization ID (defaults to the demo organization)")
	historyCmd.Flags().Int("limit", 10, "Maximum snapshots to list")
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(historyCmd)
}
