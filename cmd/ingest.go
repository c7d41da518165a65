package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/riskcore/pkg/config"
	"github.com/user/riskcore/pkg/extract"
	"github.com/user/riskcore/pkg/ingest"
	"github.com/user/riskcore/pkg/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest security-assessment files into the canonical store",
	Args:  cobra.MinimumNArgs(1),
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

		// Extraction is only wired up when a key is configured; structured
		// files ingest fine without one.
		var extractor extract.Extractor
		if apiKey := cfg.GetAPIKey(cfg.SelectedProvider); apiKey != "" {
			extractor, err = extract.NewExtractor(ctx, cfg.SelectedProvider, apiKey, cfg.SelectedModel)
			if err != nil {
				fmt.Printf("Error initializing extraction provider: %v\n", err)
				return
			}
		}

		files := make([]ingest.File, 0, len(args))
		for _, path := range args {
			content, err := os.ReadFile(path)
			if err != nil {
				fmt.Printf("Error reading %s: %v\n", path, err)
				return
			}
			files = append(files, ingest.File{Name: filepath.Base(path), Content: content})
		}

		pipeline := ingest.NewPipeline(st, extractor, cfg.Ingest.Concurrency,
			time.Duration(cfg.Ingest.ExtractionTimeout)*time.Second)

		fmt.Printf("Ingesting %d file(s) for organization %s...\n\n", len(files), orgID)
		results := pipeline.ProcessFiles(ctx, orgID, files)

		var assets, vulns, findings, failed int
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Printf("  %-30s FAILED  %v\n", r.File, r.Err)
				continue
			}
			line := fmt.Sprintf("  %-30s ok      assets=%d vulns=%d findings=%d",
				r.File, r.AssetsCreated, r.VulnerabilitiesCreated, r.FindingsCreated)
			if r.Dropped > 0 {
				line += fmt.Sprintf(" dropped=%d", r.Dropped)
			}
			if r.Format == ingest.FormatAIExtractable {
				line += fmt.Sprintf(" confidence=%.0f%%", r.Confidence)
			}
			fmt.Println(line)
			assets += r.AssetsCreated
			vulns += r.VulnerabilitiesCreated
			findings += r.FindingsCreated
		}

		fmt.Printf("\nDone: %d asset(s), %d vulnerability(ies), %d finding(s)", assets, vulns, findings)
		if failed > 0 {
			fmt.Printf(", %d file(s) failed", failed)
		}
		fmt.Println()
	},
}

// openStore opens the canonical store and resolves the target organization,
// falling back to the configured demo organization when none is given.
func openStore(ctx context.Context, cfg *config.Config, orgID string) (*store.Store, string, error) {
	dsn, err := cfg.StoreDSN()
	if err != nil {
		return nil, "", err
	}
	st, err := store.Open(cfg.Store.Driver, dsn)
	if err != nil {
		return nil, "", err
	}

	if orgID == "" {
		orgID = cfg.Demo.OrganizationID
		if _, err := st.EnsureOrganization(ctx, orgID, cfg.Demo.OrganizationName); err != nil {
			return nil, "", err
		}
	}
	return st, orgID, nil
}

func init() {
	ingestCmd.Flags().String("org", "", "Organization ID (defaults to the demo organization)")
	rootCmd.AddCommand(ingestCmd)
}
