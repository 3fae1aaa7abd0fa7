package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/avolkov/chalkboard/internal/client/notes"
)

// terminalView renders the note editor and list to a writer. It satisfies
// both the note lifecycle view and the selection view.
type terminalView struct {
	w io.Writer
}

func (v *terminalView) DisplayNote(title, body, metadata string) {
	fmt.Fprintf(v.w, "\n=== %s ===\n%s\n\n%s\n", title, metadata, body)
}

func (v *terminalView) ClearDisplay() {
	fmt.Fprintln(v.w, "\n(no note open)")
}

func (v *terminalView) RenderList(items []notes.ListItem, bulkVisible bool) {
	if len(items) == 0 {
		fmt.Fprintln(v.w, "No notes yet.")
		return
	}
	fmt.Fprintln(v.w, "Notes:")
	for i, item := range items {
		mark := " "
		if item.Selected {
			mark = "*"
		}
		fmt.Fprintf(v.w, " %s %2d. %s  (%s)\n", mark, i+1, item.Title, item.ID)
	}
}

func (v *terminalView) UpdateSelectedCount(n int) {
	if n > 0 {
		fmt.Fprintf(v.w, "%d note(s) selected\n", n)
	}
}

func (v *terminalView) HighlightRows(selected map[string]bool) {
	// The list is redrawn on demand in a terminal; per-row highlighting
	// happens at render time via ListItem.Selected.
}

// terminalConfirmer asks a yes/no question on the terminal. Anything other
// than "y"/"yes" declines.
type terminalConfirmer struct {
	reader *bufio.Reader
	w      io.Writer
}

func (c *terminalConfirmer) Confirm(prompt string) bool {
	fmt.Fprintf(c.w, "%s [y/N] ", prompt)
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// terminalTransport prints the narration position counter.
type terminalTransport struct {
	w io.Writer
}

func (t *terminalTransport) Show(current, total int) {
	fmt.Fprintf(t.w, "[reading %d/%d]\n", current, total)
}

func (t *terminalTransport) Hide() {
	fmt.Fprintln(t.w, "[reading finished]")
}

// textSynthesizer is the terminal stand-in for a platform speech service:
// it prints each utterance and completes it immediately. Pause and Resume
// are no-ops at this level; the sequencer still tracks the state.
type textSynthesizer struct {
	w         io.Writer
	cancelled bool
}

func (s *textSynthesizer) Speak(text string, done func()) {
	s.cancelled = false
	fmt.Fprintf(s.w, "speaking: %s\n", text)
	if !s.cancelled {
		done()
	}
}

func (s *textSynthesizer) Pause()  {}
func (s *textSynthesizer) Resume() {}

func (s *textSynthesizer) Cancel() {
	s.cancelled = true
}
