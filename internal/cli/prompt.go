package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// PromptResult contains the result of a user prompt interaction.
type PromptResult struct {
	// Accepted is true if the user accepted the prompt (typed "y" or "yes").
	Accepted bool
	// Cancelled is true if reading the answer failed.
	Cancelled bool
}

// Confirm asks question and reads a yes/no answer from reader.
//
// The prompt defaults to "No" when the user presses Enter without input or
// closes the input. Valid inputs: "y" or "yes" in any case for acceptance;
// anything else declines.
func Confirm(writer io.Writer, reader io.Reader, question string) PromptResult {
	fmt.Fprintf(writer, "? %s [y/N] ", question)

	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		// EOF or error - treat as cancelled
		if scanner.Err() != nil {
			return PromptResult{Cancelled: true}
		}
		// EOF without error - treat as decline (user pressed Ctrl+D)
		return PromptResult{Accepted: false}
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return PromptResult{Accepted: true}
	default:
		return PromptResult{Accepted: false}
	}
}

// confirmDestructive asks before a destructive step when stdin is a terminal.
// Scripts and --yes proceed without a prompt.
func confirmDestructive(cmd *cobra.Command, yes bool, question string) bool {
	if yes || !isTerminal(os.Stdin) {
		return true
	}
	return Confirm(cmd.OutOrStdout(), cmd.InOrStdin(), question).Accepted
}
