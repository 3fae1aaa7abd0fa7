// Package speech drives a one-at-a-time narration of one or many notes with
// pause, resume and stop controls. The actual synthesis is delegated to a
// platform speech service behind the Synthesizer interface; the sequencer
// only owns ordering and playback state.
package speech

import (
	"fmt"
	"sync"
)

// State is the sequencer's playback state.
type State int

const (
	StateIdle State = iota
	StateSpeaking
	StatePaused
)

// Synthesizer is the platform speech service. Speak must invoke done exactly
// once when the utterance finishes naturally; a cancelled utterance must not
// call done.
type Synthesizer interface {
	Speak(text string, done func())
	Pause()
	Resume()
	Cancel()
}

// Transport is the on-screen playback control surface. Show is called when
// narration starts and on every advance; Hide when narration ends or stops.
type Transport interface {
	Show(current, total int)
	Hide()
}

// Item is one narration unit: a note reduced to its speakable fields.
type Item struct {
	Title string
	Body  string
}

// Sequencer steps through a queue of items, speaking each in turn.
type Sequencer struct {
	synth     Synthesizer
	transport Transport

	mu    sync.Mutex
	state State
	queue []Item
	index int
}

// NewSequencer constructs an idle sequencer.
func NewSequencer(synth Synthesizer, transport Transport) *Sequencer {
	return &Sequencer{synth: synth, transport: transport}
}

// State returns the current playback state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ReadNote narrates a single note as "<title>. <body>". Any narration in
// flight is cancelled first.
func (s *Sequencer) ReadNote(title, body string) {
	s.start([]Item{{Title: title, Body: body}}, false)
}

// ReadNotes narrates the items in order, one per utterance, announcing the
// position as "Note i of n". The order is the caller's: list arrival order
// filtered to the selection.
func (s *Sequencer) ReadNotes(items []Item) {
	if len(items) == 0 {
		return
	}
	s.start(items, true)
}

func (s *Sequencer) start(items []Item, multi bool) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.synth.Cancel()
	}
	s.state = StateSpeaking
	s.queue = items
	s.index = 0
	s.mu.Unlock()

	if s.transport != nil {
		s.transport.Show(1, len(items))
	}
	s.speakCurrent(multi)
}

// speakCurrent issues the utterance at the current position. The state is
// re-checked under the lock: a Stop can land between an advance decision and
// this call (reentrantly from a Transport callback, or from another
// goroutine while a platform utterance completes), and then there is nothing
// left to speak.
func (s *Sequencer) speakCurrent(multi bool) {
	s.mu.Lock()
	if s.state != StateSpeaking || s.index >= len(s.queue) {
		s.mu.Unlock()
		return
	}
	item := s.queue[s.index]
	index, total := s.index, len(s.queue)
	s.mu.Unlock()

	text := utterance(item, index, total, multi)
	s.synth.Speak(text, func() { s.advance(multi) })
}

// advance moves to the next item when the previous utterance completes.
// A stop in the meantime wins: no further utterances are issued.
func (s *Sequencer) advance(multi bool) {
	s.mu.Lock()
	if s.state == StateIdle {
		s.mu.Unlock()
		return
	}
	s.index++
	if s.index >= len(s.queue) {
		s.state = StateIdle
		s.queue = nil
		s.mu.Unlock()
		if s.transport != nil {
			s.transport.Hide()
		}
		return
	}
	current, total := s.index, len(s.queue)
	s.mu.Unlock()

	if s.transport != nil {
		s.transport.Show(current+1, total)
	}
	s.speakCurrent(multi)
}

// Pause suspends playback at the platform level. The position counter is
// untouched, so Resume continues the same utterance.
func (s *Sequencer) Pause() {
	s.mu.Lock()
	if s.state == StateSpeaking {
		s.state = StatePaused
	}
	s.mu.Unlock()
	s.synth.Pause()
}

// Resume continues a paused narration.
func (s *Sequencer) Resume() {
	s.mu.Lock()
	if s.state == StatePaused {
		s.state = StateSpeaking
	}
	s.mu.Unlock()
	s.synth.Resume()
}

// Stop cancels any in-flight utterance, tears down the transport controls
// and prevents further automatic advancement.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	s.state = StateIdle
	s.queue = nil
	s.index = 0
	s.mu.Unlock()

	s.synth.Cancel()
	if s.transport != nil {
		s.transport.Hide()
	}
}

// utterance renders the spoken text for one item.
func utterance(item Item, index, total int, multi bool) string {
	title := item.Title
	if title == "" {
		title = "Untitled"
	}
	if !multi {
		return fmt.Sprintf("%s. %s", title, item.Body)
	}
	body := item.Body
	if body == "" {
		body = "Empty note"
	}
	return fmt.Sprintf("Note %d of %d. Title: %s. Content: %s", index+1, total, title, body)
}
