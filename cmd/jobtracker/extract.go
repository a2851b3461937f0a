package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fedtech/jobtracker/constants"
	"github.com/fedtech/jobtracker/internal/assist"
	"github.com/fedtech/jobtracker/internal/extract"
	"github.com/fedtech/jobtracker/internal/jobs"
	"github.com/fedtech/jobtracker/internal/ocr"
)

var (
	extractSave    bool
	extractExplain bool
	extractEditID  string
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Pre-fill an application from a screenshot or a text file (- reads text from stdin)",
	Long: `extract runs OCR over an image (png, jpg, webp, bmp, tiff, heic) and infers
title, company, location and salary from the text. Text files and stdin skip OCR.
With --save the resulting draft is submitted; with --edit it is merged into an
existing application instead of a new one.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "submit the pre-filled draft")
	extractCmd.Flags().BoolVar(&extractExplain, "explain", false, "print which rule produced each field")
	extractCmd.Flags().StringVar(&extractEditID, "edit", "", "merge into the application with this id")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	ext := constants.NormalizeExt(filepath.Ext(path))
	out := cmd.OutOrStdout()

	if path == "-" || ext == "txt" {
		text, err := readText(cmd, path)
		if err != nil {
			return err
		}
		rec, trace := extract.Explain(text)
		printRecord(out, rec)
		if extractExplain {
			printTrace(out, trace)
		}
		if !extractSave && extractEditID == "" {
			return nil
		}
		return submitRecord(cmd, rec)
	}

	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return fmt.Errorf("unsupported file type %q", ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dataURI := ocr.EncodeDataURI(constants.MIMEForExt(ext), data)

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := newSession(a)
	if err != nil {
		return err
	}

	res, err := sess.Upload(cmd.Context(), dataURI, func(status string, fraction float64) {
		fmt.Fprintf(cmd.ErrOrStderr(), "\r%s %3.0f%%", status, fraction*100)
		if fraction >= 1 {
			fmt.Fprintln(cmd.ErrOrStderr())
		}
	})
	if err != nil {
		return err
	}

	printRecord(out, res.Record)
	fmt.Fprintf(out, "confidence: %.2f\n", res.OCR.Confidence)
	for _, w := range res.OCR.Warnings {
		fmt.Fprintln(out, "warning:", w)
	}
	if extractExplain {
		_, trace := extract.Explain(res.OCR.Text)
		printTrace(out, trace)
	}
	if !extractSave {
		return nil
	}
	j, err := sess.Submit(cmd.Context(), a.store)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "saved %s\n", j.ID)
	return nil
}

func newSession(a *app) (*assist.Session, error) {
	fields := assist.NewRuleExtractor(a.logger)
	if extractEditID == "" {
		return assist.NewSession(a.ocrAdapter(), fields, jobs.NewDraft(time.Now()), a.logger), nil
	}
	existing, err := a.store.Get(extractEditID)
	if err != nil {
		return nil, err
	}
	return assist.EditSession(a.ocrAdapter(), fields, existing, a.logger), nil
}

func submitRecord(cmd *cobra.Command, rec extract.Record) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	base := jobs.NewDraft(time.Now())
	if extractEditID != "" {
		existing, err := a.store.Get(extractEditID)
		if err != nil {
			return err
		}
		base = jobs.DraftFromJob(existing)
	}
	j, err := a.store.Submit(cmd.Context(), base.Merge(rec), extractEditID)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", j.ID)
	return nil
}

func readText(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

func printRecord(w io.Writer, rec extract.Record) {
	for _, kv := range rec.Fields() {
		if kv[0] == extract.FieldNotes {
			continue
		}
		v := kv[1]
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(w, "%-9s %s\n", kv[0]+":", v)
	}
}

func printTrace(w io.Writer, trace []extract.Match) {
	for _, m := range trace {
		if m.Field == extract.FieldNotes {
			continue
		}
		fmt.Fprintf(w, "  %s <- %s (line %d) %q\n", m.Field, m.Rule, m.Line, strings.TrimSpace(m.Value))
	}
}
