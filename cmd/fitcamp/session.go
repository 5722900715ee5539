package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/jrsteele09/fitcamp-session/internal/errors"
	"github.com/jrsteele09/fitcamp-session/tabsession"
)

func newRegisterCmd(a *app) *cobra.Command {
	var name, password, confirm string
	cmd := &cobra.Command{
		Use:   "register <account>",
		Short: "Create a FitCamp account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = a.readSecret(cmd, "Password: "); err != nil {
					return err
				}
				if confirm, err = a.readSecret(cmd, "Confirm password: "); err != nil {
					return err
				}
			}
			if confirm == "" {
				confirm = password
			}
			if name == "" {
				name = args[0]
			}
			if err := a.client.Register(cmd.Context(), args[0], name, password, confirm); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s. Run 'fitcamp login %s' to sign in.\n", args[0], args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (default: the account)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	cmd.Flags().StringVar(&confirm, "confirm", "", "password confirmation (default: the password)")
	return cmd
}

func newLoginCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <account>",
		Short: "Sign in on this tab",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := a.readSecret(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = p
			}
			res, err := a.client.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			if !a.mgr.Login(res.User, res.Token) {
				return errors.New("signed in, but the session could not be saved on this tab")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s on tab %s\n", displayName(res.User.Name, string(res.User.ID)), a.mgr.TabID())
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out of this tab only",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.mgr.IsLoggedIn() {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in on this tab")
				return nil
			}
			if !a.mgr.Logout() {
				return errors.New("the session could not be removed from this tab")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed out of tab %s\n", a.mgr.TabID())
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the user signed in on this tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user := a.mgr.CurrentUser()
			if user == nil || !a.mgr.IsLoggedIn() {
				return apperrors.ErrNotLoggedIn
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (id %s) on tab %s\n", displayName(user.Name, user.Account), user.ID, a.mgr.TabID())
			if !remote {
				return nil
			}

			info, err := a.client.UserInfo(cmd.Context())
			if err := a.check(err); err != nil {
				return err
			}
			fmt.Fprintf(out, "Signed up: %d  Favourites: %d  Organised: %d\n",
				len(info.Activities), len(info.FavoriteActivities), len(info.CreatedActivities))
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "also fetch the profile from the backend")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the stored token with the backend and sign out if it has expired",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.mgr.IsLoggedIn() {
				return apperrors.ErrNotLoggedIn
			}
			if !a.mgr.ValidateAndLogoutIfExpired(cmd.Context()) {
				if a.mgr.IsLoggedIn() {
					return errors.New("could not confirm the session with the backend; still signed in")
				}
				return apperrors.ErrSessionExpired
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session is valid")
			return nil
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Keep this tab open: stamp activity and sweep expired tabs until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(a.cfg.GetAppName())
			out := cmd.OutOrStdout()
			a.mgr.OnLogin(func(e tabsession.LoginEvent) {
				verb := "Signed in"
				if e.Restored {
					verb = "Restored session"
				}
				fmt.Fprintf(out, "%s: %s on tab %s\n", verb, displayName(e.User.Name, string(e.User.ID)), e.TabID)
			})
			a.mgr.OnLogout(func(e tabsession.LogoutEvent) {
				fmt.Fprintf(out, "Signed out of tab %s\n", e.TabID)
			})

			fmt.Fprintf(out, "Watching tab %s, press Ctrl+C to stop\n", a.mgr.TabID())
			a.mgr.Run(cmd.Context())
			return nil
		},
	}
}

// readSecret reads one line from the command's input after printing prompt.
func (a *app) readSecret(cmd *cobra.Command, prompt string) (string, error) {
	if a.in == nil {
		a.in = bufio.NewReader(cmd.InOrStdin())
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func displayName(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
