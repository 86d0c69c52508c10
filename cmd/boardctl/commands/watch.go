package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/consultboard/pkg/boardevents"
	"github.com/spf13/cobra"
)

func newWatchCmd(o *options) *cobra.Command {
	var (
		ids    bool
		events bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the board live",
		Long: `Keep a live board session open and redraw it whenever another
viewer changes something. With --events, print one line per change
notification instead.

Examples:
  boardctl watch --redis redis://localhost:6379/0
  boardctl watch --events`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if events {
				return o.watchEvents(ctx)
			}

			s, closeSession, err := o.session(ctx)
			if err != nil {
				return err
			}
			defer closeSession()

			o.p.ShowIDs(ids)
			render := func() {
				o.p.Step("%s", time.Now().Format("15:04:05"))
				o.p.Board(s.Snapshot(), s.Status())
			}

			render()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-s.Updates():
					render()
				case <-s.Stopped():
					render()
					return o.p.Error("live updates stopped", "The board event stream ended, the board above may be stale.",
						[]string{fmt.Sprintf("Check that Redis is reachable at %s and run watch again", o.redisURL)})
				}
			}
		},
	}

	cmd.Flags().BoolVar(&ids, "ids", false, "Show entity ids")
	cmd.Flags().BoolVar(&events, "events", false, "Print change notifications instead of redrawing")
	return cmd
}

func (o *options) watchEvents(ctx context.Context) error {
	if o.redisURL == "" {
		return o.p.Error("live updates need Redis", "No Redis URL was given.",
			[]string{"Pass --redis redis://host:6379/0 or set BOARD_REDIS_URL"})
	}

	bus, err := boardevents.NewRedisBusFromURL(o.redisURL, o.namespace)
	if err != nil {
		return o.p.Error("invalid Redis URL", err.Error(), nil)
	}
	defer bus.Close()

	sub, err := bus.Subscribe(ctx)
	if err != nil {
		return o.p.Error("cannot subscribe to board updates", err.Error(), nil)
	}
	defer sub.Close()

	o.p.Step("listening on %s", boardevents.Channel(o.namespace))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			o.p.Event(ev)
		case err, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			o.p.Warning("skipped event: %v", err)
		}
	}
}
