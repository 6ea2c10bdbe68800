package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewContactsCommand creates the contacts command group.
func NewContactsCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contacts",
		Short: "List or add contacts",
	}
	cmd.AddCommand(newContactsListCommand(opts))
	cmd.AddCommand(newContactsAddCommand(opts))
	return cmd
}

func newContactsListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <owner-phone>",
		Short: "List an owner's contacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPhones(args[0]); err != nil {
				return err
			}
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			contacts, err := opts.client().Contacts(ctx, args[0])
			if err != nil {
				return opts.apiError(err)
			}
			return opts.formatter(cmd).Print(contacts, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "PHONE\tNAME\tREGISTERED")
				for _, c := range contacts {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Phone, c.Name, yesNo(c.IsUser))
				}
				return tw.Flush()
			})
		},
	}
}

func newContactsAddCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <owner-phone> <contact-phone> <name...>",
		Short: "Save a contact under an owner",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPhones(args[0], args[1]); err != nil {
				return err
			}
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			c, err := opts.client().AddContact(ctx, args[0], strings.Join(args[2:], " "), args[1])
			if err != nil {
				return opts.apiError(err)
			}
			return opts.formatter(cmd).Print(c, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "added %s (%s), registered: %s\n", c.Name, c.Phone, yesNo(c.IsUser))
				return err
			})
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
