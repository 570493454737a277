package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"

	"carelog/internal/adapters/storage"
	entryStore "carelog/internal/adapters/storage/entry"
	"carelog/internal/application/orchestrators"
	"carelog/internal/application/projections"
	domainEntry "carelog/internal/domain/entry"
)

var dbPath string

func main() {
	rootCmd := &cobra.Command{
		Use:   "carelogctl",
		Short: "Operational tooling for the care visit recorder",
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "carelog.db", "database path")

	rootCmd.AddCommand(hashPasswordCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(snapshotCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openStore() (entryStore.Store, *sql.DB, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := storage.InitDB(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("initialize database: %w", err)
	}
	return entryStore.NewSQLiteStore(db), db, nil
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for CARELOG_ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := orchestrators.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Println(string(hash))
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write all entries as CSV to stdout, newest date first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := store.List(context.Background(), entryStore.ListFilter{OrderByDateDesc: true})
			if err != nil {
				return err
			}

			cw := csv.NewWriter(os.Stdout)
			if err := cw.Write(domainEntry.CSVHeader); err != nil {
				return err
			}
			for i := range entries {
				if err := cw.Write(entries[i].CSVRecord()); err != nil {
					return err
				}
			}
			cw.Flush()
			return cw.Error()
		},
	}
}

func snapshotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Print the per-person overdue report",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			rows, err := projections.QueryGetSnapshot(context.Background(),
				projections.GetSnapshotQuery{Now: time.Now()},
				projections.GetSnapshotDeps{EntryStore: store},
			)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PERSON\tSITE\tLAST VISIT\tDAYS OVERDUE")
			for _, r := range rows {
				overdue := "never visited"
				if r.HasVisit {
					overdue = fmt.Sprintf("%d", r.OverdueDays)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Name, r.Site, r.LastDate, overdue)
			}
			return tw.Flush()
		},
	}
}
