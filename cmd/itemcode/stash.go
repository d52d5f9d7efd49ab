package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/udisondev/itemcode/internal/config"
	"github.com/udisondev/itemcode/internal/stash"
)

// openStash opens the configured store and a service for the configured game.
func (a *app) openStash(ctx context.Context) (*stash.Service, func() error, error) {
	in, err := a.inspector()
	if err != nil {
		return nil, nil, err
	}
	game, err := in.Game().MarshalText()
	if err != nil {
		return nil, nil, err
	}

	var store stash.Store
	switch a.cfg.Stash.Backend {
	case config.BackendPostgres:
		dsn := a.cfg.Stash.Database.DSN()
		if err := stash.Migrate(ctx, dsn); err != nil {
			return nil, nil, err
		}
		store, err = stash.NewPostgres(ctx, dsn)
	default:
		store, err = stash.OpenPebble(a.cfg.Stash.Dir)
	}
	if err != nil {
		return nil, nil, err
	}
	return stash.NewService(store, in, string(game)), store.Close, nil
}

func newStashCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stash",
		Short: "Save item codes under a name",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name> <code>",
			Short: "Normalize and save a code",
			Args:  cobra.ExactArgs(2),
			RunE: a.withStash(func(ctx context.Context, svc *stash.Service, out io.Writer, args []string) error {
				e, err := svc.Add(ctx, args[0], args[1])
				if errors.Is(err, stash.ErrDuplicate) {
					fmt.Fprintf(out, "already stashed as %s (%s)\n", e.ID, e.Name)
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(out, e.ID)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List saved codes, oldest first",
			Args:  cobra.NoArgs,
			RunE: a.withStash(func(ctx context.Context, svc *stash.Service, out io.Writer, _ []string) error {
				entries, err := svc.List(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tCREATED\tCODE")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Name, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Code)
				}
				return tw.Flush()
			}),
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Print a saved code",
			Args:  cobra.ExactArgs(1),
			RunE: a.withStash(func(ctx context.Context, svc *stash.Service, out io.Writer, args []string) error {
				e, err := svc.Get(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(out, e.Code)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete a saved code",
			Args:  cobra.ExactArgs(1),
			RunE: a.withStash(func(ctx context.Context, svc *stash.Service, _ io.Writer, args []string) error {
				return svc.Remove(ctx, args[0])
			}),
		},
	)
	return cmd
}

type stashFunc func(ctx context.Context, svc *stash.Service, out io.Writer, args []string) error

func (a *app) withStash(fn stashFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		svc, closeStore, err := a.openStash(ctx)
		if err != nil {
			return fmt.Errorf("opening stash: %w", err)
		}
		defer func() {
			if cerr := closeStore(); cerr != nil && err == nil {
				err = fmt.Errorf("closing stash: %w", cerr)
			}
		}()
		return fn(ctx, svc, cmd.OutOrStdout(), args)
	}
}
