package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/matheus3301/wppclone/internal/store"
	"github.com/spf13/cobra"
)

// NewSendCommand creates the send command.
func NewSendCommand(opts *RootOptions) *cobra.Command {
	var image bool

	cmd := &cobra.Command{
		Use:   "send <from-phone> <to-phone> <message...>",
		Short: "Send a text message, or an image URL with --image",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPhones(args[0], args[1]); err != nil {
				return err
			}
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			msg, err := opts.client().SendMessage(ctx, args[0], args[1], strings.Join(args[2:], " "), image)
			if err != nil {
				return opts.apiError(err)
			}
			return opts.formatter(cmd).Print(msg, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "sent %s at %s\n", msg.ID, msg.Timestamp)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&image, "image", false, "treat the message as an image URL")
	return cmd
}

// NewMessagesCommand creates the messages command.
func NewMessagesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "messages <user-phone> <contact-phone>",
		Short: "Print the thread between two users",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPhones(args[0], args[1]); err != nil {
				return err
			}
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			msgs, err := opts.client().Messages(ctx, args[0], args[1])
			if err != nil {
				return opts.apiError(err)
			}
			return opts.formatter(cmd).Print(msgs, func(w io.Writer) error {
				for _, m := range msgs {
					if err := writeMessage(w, m); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

// NewChatsCommand creates the chats command.
func NewChatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chats <phone>",
		Short: "List conversations, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPhones(args[0]); err != nil {
				return err
			}
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()
			rows, err := opts.client().ChatList(ctx, args[0])
			if err != nil {
				return opts.apiError(err)
			}
			return opts.formatter(cmd).Print(rows, func(w io.Writer) error {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "PHONE\tNAME\tONLINE\tLAST\tTIME")
				for _, r := range rows {
					last := r.LastMessage
					if r.IsImage {
						last = "[image]"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Phone, r.Name, yesNo(r.Online), preview(last, 40), r.Timestamp)
				}
				return tw.Flush()
			})
		},
	}
}

func writeMessage(w io.Writer, m store.Message) error {
	content := m.Content
	if m.IsImage {
		content = "[image] " + content
	}
	_, err := fmt.Fprintf(w, "[%s] %s: %s\n", m.Timestamp, m.Sender, content)
	return err
}

// preview collapses newlines and shortens s to at most n runes.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n-1]) + "…"
	}
	return s
}
