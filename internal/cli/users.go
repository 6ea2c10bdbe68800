package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/matheus3301/wppclone/internal/chat"
	"github.com/matheus3301/wppclone/internal/store"
	"github.com/spf13/cobra"
)

// NewRegisterCommand creates the register command.
func NewRegisterCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "register <phone> <name...>",
		Short: "Register a new user",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPhones(args[0]); err != nil {
				return err
			}
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			u, err := opts.client().Register(ctx, strings.Join(args[1:], " "), args[0])
			if err != nil {
				return opts.apiError(err)
			}
			return opts.formatter(cmd).Print(u, func(w io.Writer) error {
				return writeUser(w, u)
			})
		},
	}
}

// NewLoginCommand creates the login command.
func NewLoginCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login <phone>",
		Short: "Log in and mark the user online",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPhones(args[0]); err != nil {
				return err
			}
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			u, err := opts.client().Login(ctx, args[0])
			if err != nil {
				return opts.apiError(err)
			}
			return opts.formatter(cmd).Print(u, func(w io.Writer) error {
				return writeUser(w, u)
			})
		},
	}
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout <phone>",
		Short: "Mark the user offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPhones(args[0]); err != nil {
				return err
			}
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			if err := opts.client().Logout(ctx, args[0]); err != nil {
				return opts.apiError(err)
			}
			result := map[string]any{"success": true, "phone": args[0]}
			return opts.formatter(cmd).Print(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s logged out\n", args[0])
				return err
			})
		},
	}
}

// NewHeartbeatCommand creates the heartbeat command.
func NewHeartbeatCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "heartbeat <phone>",
		Short: "Refresh the user's presence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPhones(args[0]); err != nil {
				return err
			}
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			u, err := opts.client().Heartbeat(ctx, args[0])
			if err != nil {
				return opts.apiError(err)
			}
			return opts.formatter(cmd).Print(u, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s is %s\n", u.Phone, u.Status)
				return err
			})
		},
	}
}

// NewUsersCommand creates the users command.
func NewUsersCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			users, err := opts.client().Users(ctx)
			if err != nil {
				return opts.apiError(err)
			}
			return opts.formatter(cmd).Print(users, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "PHONE\tNAME\tSTATUS")
				for _, u := range users {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", u.Phone, u.Name, u.Status)
				}
				return tw.Flush()
			})
		},
	}
}

// NewUserCommand creates the user command.
func NewUserCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "user <phone>",
		Short: "Show one user's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPhones(args[0]); err != nil {
				return err
			}
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			u, err := opts.client().User(ctx, args[0])
			if err != nil {
				return opts.apiError(err)
			}
			return opts.formatter(cmd).Print(u, func(w io.Writer) error {
				return writeUser(w, u)
			})
		},
	}
}

// NewProfileCommand creates the profile command.
func NewProfileCommand(opts *RootOptions) *cobra.Command {
	var name, bio, pic string

	cmd := &cobra.Command{
		Use:   "profile <phone>",
		Short: "Update name, bio, or picture",
		Long: `Update the given profile fields. Flags that are not passed are left unchanged.
A new name or picture is copied into every contact entry that points at this user.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPhones(args[0]); err != nil {
				return err
			}
			var upd chat.ProfileUpdate
			if cmd.Flags().Changed("name") {
				upd.Name = &name
			}
			if cmd.Flags().Changed("bio") {
				upd.Bio = &bio
			}
			if cmd.Flags().Changed("pic") {
				upd.ProfilePic = &pic
			}
			if upd.Name == nil && upd.Bio == nil && upd.ProfilePic == nil {
				return NewExitError(ExitCommandError, "nothing to update: pass --name, --bio, or --pic")
			}

			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			u, err := opts.client().UpdateProfile(ctx, args[0], upd)
			if err != nil {
				return opts.apiError(err)
			}
			return opts.formatter(cmd).Print(u, func(w io.Writer) error {
				return writeUser(w, u)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&bio, "bio", "", "about text")
	cmd.Flags().StringVar(&pic, "pic", "", "profile picture URL")
	return cmd
}

func writeUser(w io.Writer, u store.User) error {
	_, err := fmt.Fprintf(w, "Name:    %s\nPhone:   %s\nStatus:  %s\nBio:     %s\nPicture: %s\n",
		u.Name, u.Phone, u.Status, u.Bio, u.ProfilePic)
	return err
}
