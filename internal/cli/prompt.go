package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// PromptLine prints label and reads one line from in.
// Returns def if the user enters nothing or input fails.
func PromptLine(in *bufio.Reader, out io.Writer, label, def string) string {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}

	input, err := in.ReadString('\n')
	if err != nil && input == "" {
		if err != io.EOF {
			log.Warn().Err(err).Msg("Failed to read input, using default")
		}
		return def
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return def
	}
	return input
}

// PromptBody reads a multi-line lesson body from in, ending at a line
// holding a single "." or at end of input.
func PromptBody(in *bufio.Reader, out io.Writer) string {
	fmt.Fprintln(out, "Contenu (terminez par une ligne contenant un seul \".\") :")

	var lines []string
	for {
		line, err := in.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "." {
			break
		}
		if line != "" {
			lines = append(lines, trimmed)
		}
		if err != nil {
			break
		}
	}
	return strings.Join(lines, "\n")
}
