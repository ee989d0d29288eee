// Command bareclad is a thin front door onto the engine: it is not where
// the functionality lives, only where a script gets loaded and a database
// gets opened. Three subcommands are provided: "run" executes a Traqula
// script file against a (config-selected) database, "verify" checks the
// persisted ledger hash chain, and "serve" documents the seam for a future
// network-facing frontend without implementing one.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Roenbaeck/bareclad/blog"
	"github.com/Roenbaeck/bareclad/config"
	"github.com/Roenbaeck/bareclad/database"
	"github.com/Roenbaeck/bareclad/persist"
	"github.com/Roenbaeck/bareclad/query"
	"github.com/Roenbaeck/bareclad/traqula"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var configPath string

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bareclad",
		Short: "bareclad is an experimental database engine for Transitional Modeling",
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "bareclad.json", "path to bareclad.json")
	cmd.AddCommand(runCmd())
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(verifyCmd())
	return cmd
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <script.traqula>",
		Short: "run a Traqula script against the configured database and print its search results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openConfigured()
			if err != nil {
				return err
			}
			defer db.Close()

			script, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			rs, err := query.Submit(db, string(script), false, 0)
			if err != nil {
				return err
			}
			results, err := query.Collect(rs)
			if err != nil {
				return err
			}
			printResults(cmd, results)
			return nil
		},
	}
}

// serveCmd documents the network-facing seam without implementing it: the
// HTTP JSON endpoint and static web client are out of scope (SPEC_FULL.md
// §1), but a caller wiring one in later has a subcommand to attach it to.
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "load the configured database and exit (placeholder for a network frontend)",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openConfigured()
			if err != nil {
				return err
			}
			defer db.Close()
			blog.Info("serve: database ready, no frontend wired")
			return nil
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "check the persisted ledger hash chain for gaps or mismatches",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openConfigured()
			if err != nil {
				return err
			}
			defer db.Close()

			mismatches, err := db.VerifyLedger()
			if err != nil {
				return err
			}
			if len(mismatches) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "ledger OK")
				return nil
			}
			for _, m := range mismatches {
				fmt.Fprintf(cmd.OutOrStdout(), "mismatch at posit %d: expected %s, stored %s\n", m.PositId, m.ExpectedHash, m.StoredHash)
			}
			return fmt.Errorf("ledger verification found %d mismatch(es)", len(mismatches))
		},
	}
}

func openConfigured() (*config.Config, *database.Database, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.PrepareDatabaseFile(); err != nil {
		return nil, nil, err
	}

	mode := persist.InMemory
	path := ""
	if cfg.EnablePersistence {
		mode = persist.File
		path = cfg.DatabaseFileAndPath
	}
	p, err := persist.Open(mode, path)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(p)
	if err != nil {
		return nil, nil, err
	}

	if cfg.TraqulaFileToRunOnStartup != "" {
		seed, err := os.ReadFile(cfg.TraqulaFileToRunOnStartup)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("reading startup script %s: %w", cfg.TraqulaFileToRunOnStartup, err)
		}
		rs, err := query.Submit(db, string(seed), false, 0)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		if _, err := query.Collect(rs); err != nil {
			db.Close()
			return nil, nil, err
		}
	}

	return cfg, db, nil
}

// printResults renders each search's ResultSet as a tab-separated table on
// stdout, in the order "search" commands appeared in the script.
func printResults(cmd *cobra.Command, results []*traqula.ResultSet) {
	out := cmd.OutOrStdout()
	for i, rs := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, tabJoin(rs.Columns))
		for _, row := range rs.Rows {
			fmt.Fprintln(out, tabJoin(row))
		}
		if rs.Limited {
			fmt.Fprintln(out, "... (limit reached)")
		}
	}
}

func tabJoin(fields []string) string {
	out := ""
	for i, f := range fields {
		if i > 0 {
			out += "\t"
		}
		out += f
	}
	return out
}
