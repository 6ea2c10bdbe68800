// Package cli implements the wppctl command tree.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/matheus3301/wppclone/internal/client"
	"github.com/matheus3301/wppclone/internal/config"
	"github.com/matheus3301/wppclone/internal/instance"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Server  string
	Format  string // "text" | "json" | "yaml"
	Timeout time.Duration
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for wppctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "wppctl",
		Short:         "wppctl talks to a running wppd server",
		Long:          "Register users, manage contacts, send messages, and watch live events on a wppd server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.Server == "" {
				opts.Server = defaultServer()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Server, "server", "", "server address (default: listen_addr from config)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", client.DefaultTimeout, "per-request timeout")

	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewHeartbeatCommand(opts))
	cmd.AddCommand(NewUsersCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))
	cmd.AddCommand(NewProfileCommand(opts))
	cmd.AddCommand(NewContactsCommand(opts))
	cmd.AddCommand(NewSendCommand(opts))
	cmd.AddCommand(NewMessagesCommand(opts))
	cmd.AddCommand(NewChatsCommand(opts))
	cmd.AddCommand(NewShareCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))

	markUsageErrors(cmd)
	return cmd
}

// markUsageErrors gives cobra's flag and argument errors ExitCommandError so
// they exit with 2 like the checks done inside commands.
func markUsageErrors(root *cobra.Command) {
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid flag", err)
	})

	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		if validate := c.Args; validate != nil {
			c.Args = func(c *cobra.Command, args []string) error {
				if err := validate(c, args); err != nil {
					return WrapExitError(ExitCommandError, "invalid arguments", err)
				}
				return nil
			}
		}
		for _, sub := range c.Commands() {
			walk(sub)
		}
	}
	walk(root)
}

// defaultServer reads listen_addr from the config file and environment.
func defaultServer() string {
	cfg, err := config.Resolve(instance.ConfigPath())
	if err != nil {
		cfg = config.Default()
	}
	return cfg.ListenAddr
}

// client returns an API client bounded by --timeout. A non-positive timeout
// means no limit.
func (o *RootOptions) client() *client.Client {
	hc := &http.Client{}
	if o.Timeout > 0 {
		hc.Timeout = o.Timeout
	}
	return client.New(o.Server, client.WithHTTPClient(hc))
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
}

func (o *RootOptions) requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if o.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.Timeout)
}

// apiError attaches an exit code to a client error.
func (o *RootOptions) apiError(err error) error {
	if client.IsUnavailable(err) {
		return WrapExitError(ExitCommandError, "cannot reach server at "+o.Server, err)
	}
	return WrapExitError(ExitFailure, "request failed", err)
}
