// Package cli implements the scorekeeper command-line client using Cobra.
//
// Every command except `palettes --file` talks to a running service; the
// base URL comes from --server or SCOREKEEPER_URL.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/scorekeeper-service/internal/board"
	"github.com/preston-bernstein/scorekeeper-service/internal/http/handlers"
	"github.com/preston-bernstein/scorekeeper-service/internal/match"
	"github.com/preston-bernstein/scorekeeper-service/internal/palette"
	"github.com/preston-bernstein/scorekeeper-service/internal/scoring"
)

const envServerURL = "SCOREKEEPER_URL"

var errStreamClosed = errors.New("stream closed by server")

type options struct {
	server  string
	timeout time.Duration
	width   int
	client  *Client
}

func (o *options) api() *Client {
	if o.client == nil {
		o.client = NewClient(o.server, nil)
	}
	return o.client
}

func (o *options) requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout)
}

// NewRootCommand builds the scorekeeper command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	return newRootCommand(out, nil)
}

func newRootCommand(out io.Writer, client *Client) *cobra.Command {
	opts := &options{client: client}

	root := &cobra.Command{
		Use:           "scorekeeper",
		Short:         "Drive and display a scorekeeper match",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	defaultServer := os.Getenv(envServerURL)
	if defaultServer == "" {
		defaultServer = defaultBaseURL
	}
	root.PersistentFlags().StringVar(&opts.server, "server", defaultServer, "scorekeeper service base URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", defaultHTTPTimeout, "per-request timeout")
	root.PersistentFlags().IntVarP(&opts.width, "width", "w", board.DefaultWidth, "board width in columns")

	root.AddCommand(
		newBoardCommand(opts),
		newPalettesCommand(opts),
		newSideCommand(opts, "inc", "increment", "Add a point to a side"),
		newSideCommand(opts, "dec", "decrement", "Remove a point from a side (never below zero)"),
		newSideCommand(opts, "reset", "reset", "Set one side's score to zero"),
		newResetAllCommand(opts),
		newPaletteCommand(opts),
		newNameCommand(opts),
		newQuickSetCommand(opts),
		newSettingsCommand(opts),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stdout).ExecuteContext(ctx)
}

func sideArg(raw string) (string, error) {
	side, err := scoring.ParseSide(raw)
	if err != nil {
		return "", fmt.Errorf("%q: %w", raw, err)
	}
	return side.String(), nil
}

func printMutation(cmd *cobra.Command, opts *options, resp handlers.MutationResponse) {
	out := cmd.OutOrStdout()
	if !resp.Change.Applied {
		fmt.Fprintln(out, warningStyle.Render(noOpMessage(resp)))
	}
	fmt.Fprintln(out, board.Render(resp.State, opts.width))
}

func noOpMessage(resp handlers.MutationResponse) string {
	switch {
	case resp.Change.Key != "":
		return fmt.Sprintf("palette %q is not in the catalogue; colors unchanged", resp.Change.Key)
	case resp.Change.Side != "":
		return fmt.Sprintf("%s %s left the score unchanged", resp.Change.Op, resp.Change.Side)
	default:
		return fmt.Sprintf("%s left the match unchanged", resp.Change.Op)
	}
}

func newSideCommand(opts *options, use, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <home|away>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			side, err := sideArg(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			resp, err := opts.api().SideAction(ctx, side, action)
			if err != nil {
				return err
			}
			printMutation(cmd, opts, resp)
			return nil
		},
	}
}

func newResetAllCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-all",
		Short: "Start a new match: both scores and quick-set values go to zero",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			resp, err := opts.api().ResetAll(ctx)
			if err != nil {
				return err
			}
			printMutation(cmd, opts, resp)
			return nil
		},
	}
}

func newPaletteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "palette <key>",
		Short: "Apply a palette from the catalogue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			resp, err := opts.api().SelectPalette(ctx, args[0])
			if err != nil {
				return err
			}
			printMutation(cmd, opts, resp)
			return nil
		},
	}
}

func newNameCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "name <home|away> <name>",
		Short: "Set a team's display name (an empty string is allowed)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			side, err := sideArg(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			resp, err := opts.api().SetTeamName(ctx, side, args[1])
			if err != nil {
				return err
			}
			printMutation(cmd, opts, resp)
			return nil
		},
	}
}

func newQuickSetCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quickset <home|away> <0-4>",
		Short: "Record the quick-set picker value for a side",
		Long: `Record the quick-set picker value for a side.

The value is stored for display only; it does not change the score.
Flags must come before the side, so a negative value is read as a value
and rejected by the range check.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			side, err := sideArg(args[0])
			if err != nil {
				return err
			}
			value, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("quick-set value %q: %w", args[1], err)
			}
			if value < scoring.QuickSetMin || value > scoring.QuickSetMax {
				return fmt.Errorf("quick-set value %d: %w", value, scoring.ErrQuickSetRange)
			}
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			resp, err := opts.api().SetQuickSetValue(ctx, side, value)
			if err != nil {
				return err
			}
			printMutation(cmd, opts, resp)
			return nil
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func newSettingsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Toggle the settings overlay on connected displays",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			resp, err := opts.api().ToggleSettings(ctx)
			if err != nil {
				return err
			}
			printMutation(cmd, opts, resp)
			return nil
		},
	}
}

func newBoardCommand(opts *options) *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show the score board",
		Long: `Show the score board.

With --watch the board is redrawn on every change until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if watch {
				follower := newReconnectingFollower(opts.api().Follow, cmd.ErrOrStderr(), 0, 0)
				return follower.Run(cmd.Context(), func(st match.State) {
					fmt.Fprintln(out, board.Render(st, opts.width))
				})
			}
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			st, err := opts.api().State(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, board.Render(st, opts.width))
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "follow the event stream and redraw on change")
	return cmd
}

func newPalettesCommand(opts *options) *cobra.Command {
	var (
		file   string
		asYAML bool
	)
	cmd := &cobra.Command{
		Use:   "palettes",
		Short: "List the selectable palettes",
		Long: `List the selectable palettes.

With --file a local YAML catalogue is validated and listed without contacting the service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cat palette.Catalogue
				err error
			)
			if file != "" {
				cat, err = palette.LoadFile(file)
			} else {
				ctx, cancel := opts.requestContext(cmd)
				defer cancel()
				cat, err = opts.api().Palettes(ctx)
			}
			if err != nil {
				return err
			}
			if asYAML {
				raw, err := palette.Encode(cat)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(raw)
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), renderCatalogue(cat))
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "render a local YAML catalogue instead of the service's")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the catalogue as YAML, ready to edit and load with PALETTE_FILE")
	return cmd
}
