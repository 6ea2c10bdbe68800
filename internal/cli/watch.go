package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/matheus3301/wppclone/internal/client"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand(opts *RootOptions) *cobra.Command {
	var phone, kind string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live events until interrupted",
		Long: `Stream live events from the server until interrupted.
With --phone the stream also keeps that user online.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if phone != "" {
				if err := checkPhones(phone); err != nil {
					return err
				}
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			f := opts.formatter(cmd)
			err := opts.client().Watch(ctx, client.WatchOptions{Phone: phone, Kind: kind}, func(evt client.Event) error {
				return f.Line(evt, func(w io.Writer) error {
					_, err := fmt.Fprintf(w, "%s %-17s %s\n", evt.TS, evt.Kind, evt.Payload)
					return err
				})
			})
			if err != nil {
				return WrapExitError(ExitCommandError, "event stream from "+opts.Server, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&phone, "phone", "", "stay online as this user while watching")
	cmd.Flags().StringVar(&kind, "kind", "", "only events whose kind starts with this prefix")
	return cmd
}
