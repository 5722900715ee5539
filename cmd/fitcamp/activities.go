package main

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/fitcamp-session/activities"
	apperrors "github.com/jrsteele09/fitcamp-session/internal/errors"
	"github.com/jrsteele09/fitcamp-session/users"
)

func newActivitiesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "activities",
		Aliases: []string{"activity"},
		Short:   "Browse and join FitCamp activities",
	}

	cmd.AddCommand(newActivitiesListCmd(a))
	cmd.AddCommand(newActivitiesShowCmd(a))
	cmd.AddCommand(newMembershipCmd(a, "signup", "Sign up for an activity", signUp))
	cmd.AddCommand(newMembershipCmd(a, "leave", "Leave an activity", leave))
	cmd.AddCommand(newMembershipCmd(a, "favourite", "Add an activity to your favourites", favourite))
	cmd.AddCommand(newMembershipCmd(a, "unfavourite", "Remove an activity from your favourites", unfavourite))
	cmd.AddCommand(newActivitiesDeleteCmd(a))

	return cmd
}

func newActivitiesListCmd(a *app) *cobra.Command {
	var q activities.ListQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List activities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q = q.Normalise()
			page, err := a.client.ListActivities(cmd.Context(), q)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer w.Flush()
			fmt.Fprintln(w, "ID\tTITLE\tTYPE\tDATE\tPLACES\tFEE")
			for _, act := range page.Activities {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d/%d\t%.2f\n",
					act.ID, act.Title, act.Type, formatDate(act.Date), act.CurrentParticipants, act.ParticipantsLimit, act.Fee)
			}
			fmt.Fprintf(w, "\nPage %d of %d\n", q.Page, page.Pages(q.Limit))
			return nil
		},
	}
	cmd.Flags().StringVar(&q.Type, "type", "", "only list activities of this type")
	cmd.Flags().IntVar(&q.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&q.Limit, "limit", activities.DefaultPageSize, "activities per page")
	return cmd
}

func newActivitiesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseActivityID(args[0])
			if err != nil {
				return err
			}
			act, err := a.client.ActivityDetail(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (#%d)\n", act.Title, act.ID)
			fmt.Fprintf(out, "When:      %s\n", formatDate(act.Date))
			fmt.Fprintf(out, "Where:     %s\n", act.Location)
			fmt.Fprintf(out, "Organiser: %s\n", act.OrganizerName)
			fmt.Fprintf(out, "Places:    %d/%d\n", act.CurrentParticipants, act.ParticipantsLimit)
			fmt.Fprintf(out, "Fee:       %.2f\n", act.Fee)
			if act.Profile != "" {
				fmt.Fprintf(out, "\n%s\n", act.Profile)
			}
			for _, pic := range act.Pictures() {
				fmt.Fprintf(out, "Picture:   %s\n", pic)
			}
			if user := a.mgr.CurrentUser(); user != nil && act.IsOrganizer(user.ID) {
				fmt.Fprintln(out, "\nYou organise this activity.")
			}
			return nil
		},
	}
}

type membershipFunc func(ctx context.Context, a *app, userID users.UserID, act *activities.Activity) error

func signUp(ctx context.Context, a *app, userID users.UserID, act *activities.Activity) error {
	if err := act.CanSignUp(); err != nil {
		return err
	}
	return a.client.SignUp(ctx, userID, act.ID)
}

func leave(ctx context.Context, a *app, userID users.UserID, act *activities.Activity) error {
	return a.client.Leave(ctx, userID, act.ID)
}

func favourite(ctx context.Context, a *app, userID users.UserID, act *activities.Activity) error {
	return a.client.Favourite(ctx, userID, act.ID)
}

func unfavourite(ctx context.Context, a *app, userID users.UserID, act *activities.Activity) error {
	return a.client.Unfavourite(ctx, userID, act.ID)
}

func newMembershipCmd(a *app, use, short string, fn membershipFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, act, err := a.userAndActivity(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.check(fn(cmd.Context(), a, user.ID, act)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done: %s %q\n", use, act.Title)
			return nil
		},
	}
}

func newActivitiesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an activity you organise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, act, err := a.userAndActivity(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !act.IsOrganizer(user.ID) {
				return fmt.Errorf("only the organiser can delete %q", act.Title)
			}
			if err := a.check(a.client.DeleteActivity(cmd.Context(), act.ID)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", act.Title)
			return nil
		},
	}
}

func (a *app) userAndActivity(ctx context.Context, arg string) (*users.UserProfile, *activities.Activity, error) {
	user := a.mgr.CurrentUser()
	if user == nil || !a.mgr.IsLoggedIn() {
		return nil, nil, apperrors.ErrNotLoggedIn
	}
	id, err := parseActivityID(arg)
	if err != nil {
		return nil, nil, err
	}
	act, err := a.client.ActivityDetail(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return user, act, nil
}

func parseActivityID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid activity id %q", s)
	}
	return id, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Mon 2 Jan 2006 15:04")
}
