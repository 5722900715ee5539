package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/fitcamp-session/api"
	"github.com/jrsteele09/fitcamp-session/internal/config"
	"github.com/jrsteele09/fitcamp-session/storage/sqlitestore"
	"github.com/jrsteele09/fitcamp-session/tabsession"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("fitcamp command failed")
		os.Exit(1)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg := config.New()
	setupLogging(cfg.GetLogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, closeApp := newRootCmd(cfg)
	defer func() {
		if err := closeApp(); err != nil {
			log.Err(err).Msg("Failed to close the data file")
		}
	}()
	return root.ExecuteContext(ctx)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// app is the state shared by every subcommand: one tab over the shared
// database plus a backend client that authenticates as that tab.
type app struct {
	cfg    config.Config
	tab    string
	db     *sqlitestore.DB
	mgr    *tabsession.Manager
	client *api.Client
	in     *bufio.Reader
}

func (a *app) open() error {
	db, err := sqlitestore.Open(a.cfg.GetDataFile())
	if err != nil {
		return fmt.Errorf("open %s: %w", a.cfg.GetDataFile(), err)
	}
	mgr, err := tabsession.New(
		db.Scope(sqlitestore.TabScope(a.tab)),
		db.Scope(sqlitestore.SharedScope),
		tabsession.WithConfig(a.cfg),
	)
	if err != nil {
		_ = db.Close()
		return err
	}
	a.db = db
	a.mgr = mgr
	a.client = api.New(a.cfg.GetAPIBaseURL(), mgr, api.WithActivityHook(mgr.UpdateTabActivity))
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// check logs the tab out when the backend rejected its token. Any other
// error is returned unchanged and leaves the session alone.
func (a *app) check(err error) error {
	if err == nil || !api.IsUnauthorized(err) {
		return err
	}
	a.mgr.Logout()
	return errors.New("session expired: logged out, run 'fitcamp login' again")
}

// newRootCmd builds the command tree. The returned func closes the data file
// opened by whichever subcommand ran.
func newRootCmd(cfg config.Config) (*cobra.Command, func() error) {
	a := &app{cfg: cfg}
	root := &cobra.Command{
		Use:           "fitcamp",
		Short:         "FitCamp client with per-tab sessions",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
	}
	root.PersistentFlags().StringVar(&a.tab, "tab", cfg.GetTabProfile(), "tab profile whose session is used")

	root.AddCommand(newRegisterCmd(a))
	root.AddCommand(newLoginCmd(a))
	root.AddCommand(newLogoutCmd(a))
	root.AddCommand(newWhoamiCmd(a))
	root.AddCommand(newValidateCmd(a))
	root.AddCommand(newWatchCmd(a))
	root.AddCommand(newTabsCmd(a))
	root.AddCommand(newDebugCmd(a))
	root.AddCommand(newClearCmd(a))
	root.AddCommand(newCloseCmd(a))
	root.AddCommand(newActivitiesCmd(a))

	return root, a.close
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
