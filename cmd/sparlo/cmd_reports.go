package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"sparlo/internal/store"
)

var reportsLimit int

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect the report archive",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived reports, newest first",
	RunE:  runReportsList,
}

var reportsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print an archived report's canonical document",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsShow,
}

var reportsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an archived report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportsDelete,
}

func init() {
	reportsListCmd.Flags().IntVarP(&reportsLimit, "limit", "n", 20, "Maximum entries to list")
	reportsCmd.AddCommand(reportsListCmd)
	reportsCmd.AddCommand(reportsShowCmd)
	reportsCmd.AddCommand(reportsDeleteCmd)
}

func openArchive() (*store.Store, error) {
	return store.NewStore(cfg.Store.DatabasePath)
}

func runReportsList(cmd *cobra.Command, args []string) error {
	archive, err := openArchive()
	if err != nil {
		return err
	}
	defer archive.Close()

	entries, err := archive.List(reportsLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no archived reports")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tMODE\tVARIANT\tTITLE")
	for _, e := range entries {
		flags := ""
		if e.Migrated {
			flags = " (migrated)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s%s\n",
			e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Mode, e.Variant, e.Title, flags)
	}
	return w.Flush()
}

func runReportsShow(cmd *cobra.Command, args []string) error {
	archive, err := openArchive()
	if err != nil {
		return err
	}
	defer archive.Close()

	entry, err := archive.Get(args[0])
	if err != nil {
		return err
	}

	var pretty json.RawMessage = entry.Document
	data, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func runReportsDelete(cmd *cobra.Command, args []string) error {
	archive, err := openArchive()
	if err != nil {
		return err
	}
	defer archive.Close()

	if err := archive.Delete(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "deleted %s\n", args[0])
	return nil
}
