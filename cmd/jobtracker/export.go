package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fedtech/jobtracker/internal/export"
	"github.com/fedtech/jobtracker/internal/jobs"
)

var (
	exportFilter string
	exportFrom   string
	exportTo     string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write applications to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		var window export.Window
		for _, b := range []struct {
			raw string
			dst **time.Time
		}{{exportFrom, &window.From}, {exportTo, &window.To}} {
			if b.raw == "" {
				continue
			}
			t, err := time.Parse(jobs.DateLayout, b.raw)
			if err != nil {
				return fmt.Errorf("invalid date %q, want YYYY-MM-DD", b.raw)
			}
			*b.dst = &t
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		data, err := export.NewService(a.store, a.logger).ExportJobsXLSX(cmd.Context(), exportFilter, window)
		if err != nil {
			return err
		}
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", exportOut, len(data))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFilter, "filter", "all", "all or a status")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "earliest date applied (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "latest date applied (YYYY-MM-DD)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "applications.xlsx", "output file")
	rootCmd.AddCommand(exportCmd)
}
