// Package main provides the ontosync binary entry point. Ontosync
// synchronizes a versioned ontology's terms and relations into a document
// store and produces per-run change reports.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/ontosync/config"
	"github.com/c360studio/ontosync/extract"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "ontosync"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)

	root := &cobra.Command{
		Use:           appName,
		Short:         "Synchronize an ontology into a document store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default: ontosync.yaml if present)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newRunCmd(&configPath, &verbose))
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Printf("%s %s (built %s)\n", appName, Version, BuildTime)
		},
	}
}

func newRunCmd(configPath *string, verbose *bool) *cobra.Command {
	var (
		inputPath string
		ontoName  string
		outputDir string
		format    string
		noReports bool
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one reconciliation pipeline over an extracted snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger(*verbose)

			cfg, err := config.Load(*configPath, logger)
			if err != nil {
				return err
			}
			if ontoName != "" {
				cfg.Ontology = ontoName
			}
			if outputDir != "" {
				cfg.Reports.Directory = outputDir
			}
			if format != "" {
				cfg.Reports.Format = format
			}
			if noReports {
				cfg.Reports.Enabled = false
			}
			if workers > 0 {
				cfg.Workers = workers
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := NewApp(cfg, logger)
			if err != nil {
				return err
			}
			if err := app.Start(ctx); err != nil {
				return err
			}
			defer app.Close(context.Background())

			return app.Run(ctx, extract.NewFileSource(inputPath))
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "path to the extracted ontology snapshot (JSON)")
	cmd.Flags().StringVar(&ontoName, "source-ontology", "", "lowercase ontology prefix, e.g. envo, go, uberon")
	cmd.Flags().StringVar(&outputDir, "output-directory", "", "directory for change reports")
	cmd.Flags().StringVar(&format, "format", "", "report format: tsv or csv")
	cmd.Flags().BoolVar(&noReports, "no-reports", false, "skip writing change reports")
	cmd.Flags().IntVar(&workers, "workers", 0, "class reconciliation worker count")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
