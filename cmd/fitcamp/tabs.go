package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/fitcamp-session/internal/utils"
	"github.com/jrsteele09/fitcamp-session/storage/sqlitestore"
)

func newTabsCmd(a *app) *cobra.Command {
	var users bool
	cmd := &cobra.Command{
		Use:   "tabs",
		Short: "List every known tab and who is signed in on it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()

			if users {
				fmt.Fprintln(w, "USER\tNAME\tTABS\tLAST ACTIVE")
				for _, u := range a.mgr.LoggedInUsers() {
					fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", u.User.ID, u.User.Name, len(u.Tabs), ago(u.LastActive))
				}
				return nil
			}

			stats := a.mgr.LoginStats()
			fmt.Fprintf(w, "%d tabs, %d signed in, %d users\n\n", stats.TotalTabs, stats.LoggedInTabs, stats.UniqueUsers)
			fmt.Fprintln(w, "\tTAB\tUSER\tLAST ACTIVE\tOPENED")
			for _, t := range stats.Tabs {
				marker := ""
				if t.IsCurrent {
					marker = "*"
				}
				user := "-"
				if t.IsLoggedIn {
					u := utils.Value(t.User)
					user = displayName(u.Name, string(u.ID))
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", marker, t.ID, user, ago(t.LastActive), t.CreateTime.Local().Format(time.DateTime))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&users, "users", false, "group signed-in tabs by user")
	return cmd
}

func newDebugCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "debug",
		Short: "Print this tab's session state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := json.MarshalIndent(a.mgr.DebugInfo(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
}

func newClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop this tab's session and the shared tab directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.mgr.ClearAll()
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared session data")
			return nil
		},
	}
}

func newCloseCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Close this tab: forget its private storage but leave its directory entry to expire",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.db.DropScope(sqlitestore.TabScope(a.tab)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Closed tab %s\n", a.mgr.TabID())
			return nil
		},
	}
}

func ago(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return time.Since(t).Round(time.Second).String() + " ago"
}
