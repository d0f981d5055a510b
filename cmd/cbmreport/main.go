package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ougirez/cbmreport/internal/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:           "cbmreport",
		Short:         "Warehouse CBM reporting service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  serve,
	}

	ingestCmd = &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a local spreadsheet as one upload batch",
		RunE:  ingestFile,
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE:  migrateDB,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the cbmreport version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	cfgFile    string
	ingestKind string
	ingestPath string
	version    = "dev"
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to configuration file (optional)")

	ingestCmd.Flags().StringVarP(&ingestKind, "kind", "k", "", "upload kind: inbound, outbound, inventory or catalog")
	ingestCmd.Flags().StringVarP(&ingestPath, "file", "f", "", "path to the spreadsheet")
	_ = ingestCmd.MarkFlagRequired("kind")
	_ = ingestCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(serveCmd, ingestCmd, migrateCmd, versionCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "cbmreport:", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}
