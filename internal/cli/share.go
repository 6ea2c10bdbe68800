package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
)

// ContactURIPrefix starts the payload of a shared contact QR code.
const ContactURIPrefix = "wppclone:contact:"

// NewShareCommand creates the share command.
func NewShareCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "share <phone>",
		Short: "Print a QR code others can scan to add this contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkPhones(args[0]); err != nil {
				return err
			}
			uri := ContactURIPrefix + args[0]
			qr, err := renderQR(uri)
			if err != nil {
				return WrapExitError(ExitFailure, "generate QR code", err)
			}
			result := map[string]string{"phone": args[0], "uri": uri}
			return opts.formatter(cmd).Print(result, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s  %s\n", qr, uri)
				return err
			})
		},
	}
}

// renderQR draws content as a terminal QR code. Each output line holds two
// bitmap rows using half-block characters.
func renderQR(content string) (string, error) {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "", err
	}
	qr.DisableBorder = false

	bitmap := qr.Bitmap()
	rows := len(bitmap)
	cols := 0
	if rows > 0 {
		cols = len(bitmap[0])
	}

	var sb strings.Builder
	for y := 0; y < rows; y += 2 {
		sb.WriteString("  ")
		for x := 0; x < cols; x++ {
			top := bitmap[y][x] // true = black module
			bot := false
			if y+1 < rows {
				bot = bitmap[y+1][x]
			}
			switch {
			case top && bot:
				sb.WriteRune('\u2588') // █
			case top && !bot:
				sb.WriteRune('\u2580') // ▀
			case !top && bot:
				sb.WriteRune('\u2584') // ▄
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String(), nil
}
