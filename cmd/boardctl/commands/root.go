package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/consultboard/internal/printer"
	"github.com/aussiebroadwan/consultboard/pkg/boardevents"
	"github.com/aussiebroadwan/consultboard/pkg/boardsdk"
	"github.com/aussiebroadwan/consultboard/pkg/kanban"
	"github.com/aussiebroadwan/consultboard/pkg/slogx"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every command.
type options struct {
	server    string
	redisURL  string
	namespace string
	token     string
	verbose   bool

	p      *printer.Printer
	errOut io.Writer
}

// Execute runs boardctl against os.Args.
func Execute(version string) error {
	root := NewRootCmd(os.Stdout, os.Stderr)
	root.Version = version
	return root.Execute()
}

// NewRootCmd builds the command tree writing to out and errOut.
func NewRootCmd(out, errOut io.Writer) *cobra.Command {
	o := &options{p: printer.New(out, errOut), errOut: errOut}

	root := &cobra.Command{
		Use:   "boardctl",
		Short: "Drive the consultboard kanban from a terminal",
		Long: `boardctl shows the consultant allocation board and changes it.

Clients own projects, consultants sit on at most one project or in the
"Disponível" bucket. Every change goes through the board API and is
announced to every other viewer.

Flags fall back to BOARD_SERVER, BOARD_REDIS_URL, BOARD_NAMESPACE and
BOARD_TOKEN.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	f := root.PersistentFlags()
	f.StringVarP(&o.server, "server", "s", envOr("BOARD_SERVER", "http://localhost:8080"), "Board API base URL")
	f.StringVar(&o.redisURL, "redis", os.Getenv("BOARD_REDIS_URL"), "Redis URL for live updates (watch)")
	f.StringVar(&o.namespace, "namespace", envOr("BOARD_NAMESPACE", "default"), "Board namespace on Redis")
	f.StringVar(&o.token, "token", os.Getenv("BOARD_TOKEN"), "Bearer token for the board API")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Log requests and events to stderr")

	root.AddCommand(
		newBoardCmd(o),
		newWatchCmd(o),
		newClientCmd(o),
		newProjectCmd(o),
		newConsultantCmd(o),
		newMoveCmd(o),
		newTokenCmd(o),
	)
	return root
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func (o *options) logger() *slog.Logger {
	if !o.verbose {
		return slogx.Discard()
	}
	return slogx.New(slogx.Config{Service: "boardctl", Level: "debug", Format: "text", Output: o.errOut})
}

func (o *options) gateway() *boardsdk.SDKClient {
	c := boardsdk.NewSDKClient(o.server)
	c.Token = o.token
	return c
}

// actions returns a façade over a freshly loaded board, for one-shot
// commands that do not need live updates.
func (o *options) actions(ctx context.Context) (*kanban.Actions, *kanban.Cache, error) {
	cache := kanban.NewCache()
	a := kanban.NewActions(o.gateway(), cache, o.logger())
	if err := a.Reload(ctx); err != nil {
		return nil, nil, o.failure(err, a.Status())
	}
	return a, cache, nil
}

// session opens a live session. It needs --redis.
func (o *options) session(ctx context.Context) (*kanban.Session, func(), error) {
	if o.redisURL == "" {
		return nil, nil, o.p.Error(
			"live updates need Redis",
			"No Redis URL was given.",
			[]string{"Pass --redis redis://host:6379/0 or set BOARD_REDIS_URL"},
		)
	}

	bus, err := boardevents.NewRedisBusFromURL(o.redisURL, o.namespace)
	if err != nil {
		return nil, nil, o.p.Error("invalid Redis URL", err.Error(), nil)
	}

	s, err := kanban.Open(ctx, o.gateway(), bus, kanban.Options{Logger: o.logger()})
	if s == nil {
		_ = bus.Close()
		return nil, nil, o.p.Error("cannot subscribe to board updates", err.Error(), []string{
			fmt.Sprintf("Check that Redis is reachable at %s", o.redisURL),
		})
	}
	closeAll := func() {
		_ = s.Close()
		_ = bus.Close()
	}
	if err != nil {
		closeAll()
		return nil, nil, o.failure(err, s.Status())
	}
	return s, closeAll, nil
}

// failure prints err the way the board would show it and returns a plain
// error for cobra.
func (o *options) failure(err error, status kanban.Status) error {
	var (
		verr *kanban.ValidationError
		nf   *kanban.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		return o.p.Error("invalid input", err.Error(), nil)
	case errors.As(err, &nf):
		return o.p.Error(statusOr(status, "not found"), err.Error(), []string{"Run `boardctl board --ids` to see current ids"})
	case boardsdk.IsUnauthorized(err):
		return o.p.Error("not authorized", err.Error(), []string{"Pass --token or set BOARD_TOKEN"})
	default:
		return o.p.Error(statusOr(status, "request failed"), err.Error(), []string{
			fmt.Sprintf("Check that the board API is reachable at %s", o.server),
		})
	}
}

func statusOr(s kanban.Status, fallback string) string {
	if s.Error != "" {
		return s.Error
	}
	return fallback
}
