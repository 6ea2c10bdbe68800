package cli

import (
	"fmt"

	"github.com/matheus3301/wppclone/internal/chat"
)

// checkPhones rejects malformed phone arguments before any request is made.
func checkPhones(phones ...string) error {
	for _, p := range phones {
		if !chat.ValidPhone(p) {
			return NewExitError(ExitCommandError,
				fmt.Sprintf("invalid phone %q: must be %d digits", p, chat.PhoneLength))
		}
	}
	return nil
}
