package speech

import (
	"testing"
)

// fakeSynth records utterances and lets the test decide when each finishes.
type fakeSynth struct {
	spoken    []string
	done      []func()
	paused    int
	resumed   int
	cancelled int
}

func (f *fakeSynth) Speak(text string, done func()) {
	f.spoken = append(f.spoken, text)
	f.done = append(f.done, done)
}

func (f *fakeSynth) Pause()  { f.paused++ }
func (f *fakeSynth) Resume() { f.resumed++ }
func (f *fakeSynth) Cancel() { f.cancelled++ }

// finish completes the most recent utterance, as the platform would.
func (f *fakeSynth) finish() {
	f.done[len(f.done)-1]()
}

type fakeTransport struct {
	shows  [][2]int
	hidden int
}

func (f *fakeTransport) Show(current, total int) { f.shows = append(f.shows, [2]int{current, total}) }
func (f *fakeTransport) Hide()                   { f.hidden++ }

func TestReadNoteSingleUtterance(t *testing.T) {
	synth := &fakeSynth{}
	s := NewSequencer(synth, nil)

	s.ReadNote("My Note", "Hello world")

	if len(synth.spoken) != 1 {
		t.Fatalf("got %d utterances; want 1", len(synth.spoken))
	}
	if synth.spoken[0] != "My Note. Hello world" {
		t.Errorf("utterance = %q; want %q", synth.spoken[0], "My Note. Hello world")
	}
	if s.State() != StateSpeaking {
		t.Errorf("state = %v; want StateSpeaking", s.State())
	}

	synth.finish()
	if s.State() != StateIdle {
		t.Errorf("state after finish = %v; want StateIdle", s.State())
	}
}

func TestReadNotesSpeaksInOrderThenIdle(t *testing.T) {
	synth := &fakeSynth{}
	transport := &fakeTransport{}
	s := NewSequencer(synth, transport)

	s.ReadNotes([]Item{
		{Title: "First", Body: "one"},
		{Title: "Second", Body: "two"},
		{Title: "Third", Body: "three"},
	})

	want := []string{
		"Note 1 of 3. Title: First. Content: one",
		"Note 2 of 3. Title: Second. Content: two",
		"Note 3 of 3. Title: Third. Content: three",
	}
	for i, w := range want {
		if len(synth.spoken) != i+1 {
			t.Fatalf("after %d completions: %d utterances; want %d", i, len(synth.spoken), i+1)
		}
		if synth.spoken[i] != w {
			t.Errorf("utterance %d = %q; want %q", i, synth.spoken[i], w)
		}
		synth.finish()
	}

	if s.State() != StateIdle {
		t.Errorf("state after queue drained = %v; want StateIdle", s.State())
	}
	if transport.hidden != 1 {
		t.Errorf("transport hidden %d times; want 1", transport.hidden)
	}
	if len(transport.shows) != 3 || transport.shows[1] != [2]int{2, 3} {
		t.Errorf("transport shows = %v; want position updates 1..3 of 3", transport.shows)
	}
}

func TestReadNotesFallbacks(t *testing.T) {
	synth := &fakeSynth{}
	s := NewSequencer(synth, nil)

	s.ReadNotes([]Item{{Title: "", Body: ""}})

	want := "Note 1 of 1. Title: Untitled. Content: Empty note"
	if synth.spoken[0] != want {
		t.Errorf("utterance = %q; want %q", synth.spoken[0], want)
	}
}

func TestStopPreventsAdvancement(t *testing.T) {
	synth := &fakeSynth{}
	transport := &fakeTransport{}
	s := NewSequencer(synth, transport)

	s.ReadNotes([]Item{
		{Title: "First", Body: "one"},
		{Title: "Second", Body: "two"},
	})

	s.Stop()
	if synth.cancelled == 0 {
		t.Errorf("expected Cancel to be called on Stop")
	}
	if s.State() != StateIdle {
		t.Errorf("state after Stop = %v; want StateIdle", s.State())
	}

	// A late completion callback from the cancelled utterance must not
	// start the next item.
	synth.finish()
	if len(synth.spoken) != 1 {
		t.Errorf("got %d utterances after Stop; want 1", len(synth.spoken))
	}
}

// stoppingTransport stops the sequencer from inside a position update, the
// way a control surface teardown can reenter during an advance.
type stoppingTransport struct {
	s      *Sequencer
	stopAt int
}

func (f *stoppingTransport) Show(current, total int) {
	if current == f.stopAt {
		f.s.Stop()
	}
}

func (f *stoppingTransport) Hide() {}

func TestStopDuringAdvanceDoesNotSpeakNext(t *testing.T) {
	synth := &fakeSynth{}
	transport := &stoppingTransport{stopAt: 2}
	s := NewSequencer(synth, transport)
	transport.s = s

	s.ReadNotes([]Item{
		{Title: "First", Body: "one"},
		{Title: "Second", Body: "two"},
	})

	// Completing the first utterance advances to position 2, where the
	// transport callback stops the narration before the next utterance is
	// issued.
	synth.finish()

	if s.State() != StateIdle {
		t.Errorf("state = %v; want StateIdle after reentrant Stop", s.State())
	}
	if len(synth.spoken) != 1 {
		t.Errorf("got %d utterances; want 1, nothing after the Stop", len(synth.spoken))
	}
}

func TestPauseAndResumeKeepPosition(t *testing.T) {
	synth := &fakeSynth{}
	s := NewSequencer(synth, nil)

	s.ReadNotes([]Item{
		{Title: "First", Body: "one"},
		{Title: "Second", Body: "two"},
	})

	s.Pause()
	if s.State() != StatePaused {
		t.Errorf("state after Pause = %v; want StatePaused", s.State())
	}
	if synth.paused != 1 {
		t.Errorf("synth paused %d times; want 1", synth.paused)
	}

	s.Resume()
	if s.State() != StateSpeaking {
		t.Errorf("state after Resume = %v; want StateSpeaking", s.State())
	}
	// No new utterance was issued: the platform resumes the same one.
	if len(synth.spoken) != 1 {
		t.Errorf("got %d utterances; want 1", len(synth.spoken))
	}
}

func TestReadNotesEmptyQueueIsNoop(t *testing.T) {
	synth := &fakeSynth{}
	s := NewSequencer(synth, nil)

	s.ReadNotes(nil)
	if len(synth.spoken) != 0 {
		t.Errorf("expected no utterances for an empty queue")
	}
	if s.State() != StateIdle {
		t.Errorf("state = %v; want StateIdle", s.State())
	}
}
