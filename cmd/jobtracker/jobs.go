package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fedtech/jobtracker/internal/jobs"
)

var listFilter string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked applications",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.store.List(listFilter)
		if err != nil {
			return err
		}
		printJobs(cmd.OutOrStdout(), list)
		return nil
	},
}

// draftFlags are shared by add and edit. Only flags the user set are applied.
type draftFlags struct {
	title, company, location, salary, status, date, notes string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "job title")
	cmd.Flags().StringVar(&f.company, "company", "", "company name")
	cmd.Flags().StringVar(&f.location, "location", "", "location")
	cmd.Flags().StringVar(&f.salary, "salary", "", "salary")
	cmd.Flags().StringVar(&f.status, "status", "", "applied|interview|offer|rejected|pending")
	cmd.Flags().StringVar(&f.date, "date", "", "date applied (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.notes, "notes", "", "notes")
}

func (f *draftFlags) apply(cmd *cobra.Command, d *jobs.Draft) error {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = strings.TrimSpace(v)
		}
	}
	set("title", &d.Title, f.title)
	set("company", &d.Company, f.company)
	set("location", &d.Location, f.location)
	set("salary", &d.Salary, f.salary)
	set("date", &d.DateApplied, f.date)
	set("notes", &d.Notes, f.notes)
	if cmd.Flags().Changed("status") {
		st, err := jobs.StatusFromInput(f.status)
		if err != nil {
			return err
		}
		d.Status = st
	}
	return nil
}

var addFlags draftFlags

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an application",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		d := jobs.NewDraft(time.Now())
		if err := addFlags.apply(cmd, &d); err != nil {
			return err
		}
		j, err := a.store.Submit(cmd.Context(), d, "")
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s at %s)\n", j.ID, j.Title, j.Company)
		return nil
	},
}

var editFlags draftFlags

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit an application; unset flags keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		existing, err := a.store.Get(args[0])
		if err != nil {
			return err
		}
		d := jobs.DraftFromJob(existing)
		if err := editFlags.apply(cmd, &d); err != nil {
			return err
		}
		j, err := a.store.Submit(cmd.Context(), d, existing.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", j.ID)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Change the status of an application",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := jobs.StatusFromInput(args[1])
		if err != nil {
			return err
		}
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		j, err := a.store.SetStatus(cmd.Context(), args[0], st)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", j.ID, j.Status.Label())
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		st := a.store.Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\nInterview: %d\nOffer: %d\n", st.Total, st.Interview, st.Offer)
		return nil
	},
}

func printJobs(w io.Writer, list []jobs.Job) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tINIT\tTITLE\tCOMPANY\tLOCATION\tSALARY\tSTATUS\tAPPLIED")
	for _, j := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			j.ID, jobs.Initials(j.Company), j.Title, j.Company, j.Location, j.Salary, j.Status.Label(), jobs.FormatDate(j.DateApplied))
	}
	_ = tw.Flush()
}

func init() {
	listCmd.Flags().StringVar(&listFilter, "filter", "all", "all or a status")
	addFlags.register(addCmd)
	editFlags.register(editCmd)
	rootCmd.AddCommand(listCmd, addCmd, editCmd, deleteCmd, statusCmd, statsCmd)
}
