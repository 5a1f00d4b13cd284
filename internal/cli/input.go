package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/eventsync/internal/server/services"
	"golang.org/x/term"
)

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// stdinIsTerminal reports whether prompts can be answered interactively.
func stdinIsTerminal() bool {
	return isTerminal(int(os.Stdin.Fd()))
}

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

var promptText = map[services.Prompt]string{
	services.PromptDeleteSeriesForward: "This event repeats. Delete this and all following occurrences? [y/N]",
	services.PromptDeleteLinkedGroup:   "This event is shared with other departments. Delete it from all of them? [y/N]",
}

// TerminalConfirmer asks delete prompts on a terminal. When input is not
// interactive every prompt is answered "no", so only the named document
// is touched.
type TerminalConfirmer struct {
	reader      *bufio.Reader
	out         io.Writer
	interactive bool
}

func NewTerminalConfirmer(reader *bufio.Reader, out io.Writer, interactive bool) *TerminalConfirmer {
	return &TerminalConfirmer{reader: reader, out: out, interactive: interactive}
}

func (c *TerminalConfirmer) Confirm(_ context.Context, p services.Prompt) (bool, error) {
	text, ok := promptText[p]
	if !ok {
		text = string(p) + "? [y/N]"
	}

	if !c.interactive {
		fmt.Fprintf(c.out, "%s n (non-interactive)\n", text)
		return false, nil
	}

	answer, err := GetSimpleText(c.reader, text, c.out)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
