// Package cli is the interactive terminal client. It owns the sign-in flow
// (including envelope setup and unlock), holds the session for the lifetime
// of the process, and dispatches REPL commands to the note lifecycle
// manager and the speech sequencer.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/avolkov/chalkboard/internal/client/api"
	"github.com/avolkov/chalkboard/internal/client/envelope"
	"github.com/avolkov/chalkboard/internal/client/export"
	"github.com/avolkov/chalkboard/internal/client/localcache"
	"github.com/avolkov/chalkboard/internal/client/notes"
	"github.com/avolkov/chalkboard/internal/client/selection"
	"github.com/avolkov/chalkboard/internal/client/session"
	"github.com/avolkov/chalkboard/internal/client/speech"
	"github.com/avolkov/chalkboard/internal/models"
	"go.uber.org/zap"
)

// App wires the API client, the local cache and the terminal UI into one
// interactive client process.
type App struct {
	client *api.Client
	cache  *localcache.Cache
	log    *zap.Logger

	reader  *bufio.Reader
	out     io.Writer
	view    *terminalView
	confirm *terminalConfirmer

	sess      *session.Session
	tracker   *selection.Tracker
	manager   *notes.Manager
	sequencer *speech.Sequencer
}

// NewApp builds the client application around an API endpoint and a local
// cache file.
func NewApp(client *api.Client, cache *localcache.Cache, log *zap.Logger) *App {
	reader := bufio.NewReader(os.Stdin)
	view := &terminalView{w: os.Stdout}
	return &App{
		client:  client,
		cache:   cache,
		log:     log,
		reader:  reader,
		out:     os.Stdout,
		view:    view,
		confirm: &terminalConfirmer{reader: reader, w: os.Stdout},
	}
}

// Run starts the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner, a.out)
}

func (a *App) isSignedIn() bool {
	return a.sess != nil
}

func (a *App) status() string {
	if a.sess == nil {
		return "signed out"
	}
	if a.sess.Encrypted() {
		return a.sess.Email + " (encrypted)"
	}
	return a.sess.Email
}

// startSession builds the per-sign-in state and loads the note list.
func (a *App) startSession(ctx context.Context, email string, settings models.Settings, env *envelope.Envelope) error {
	a.sess = session.New(email, settings, env)
	a.tracker = selection.New(a.view)
	a.manager = notes.NewManager(a.client, a.sess, a.view, a.confirm, a.tracker, a.log)
	a.sequencer = speech.NewSequencer(&textSynthesizer{w: a.out}, &terminalTransport{w: a.out})
	return a.manager.List(ctx)
}

func (a *App) endSession() {
	if a.manager != nil {
		a.manager.Reset()
	}
	a.client.SignOut()
	a.sess = nil
	a.tracker = nil
	a.manager = nil
	a.sequencer = nil
}

// Register creates a new account, optionally setting up the encryption
// envelope. The passphrase is entered twice and never sent to the server.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password: ")
	if err != nil {
		return err
	}
	defer wipe(password)

	var (
		env            *envelope.Envelope
		salt, verifier []byte
	)
	if a.confirm.Confirm("Enable end-to-end encryption for this account?") {
		passphrase, err := getPassword(a.out, fmt.Sprintf("Enter encryption passphrase (min %d characters): ", envelope.MinPassphraseLen))
		if err != nil {
			return err
		}
		defer wipe(passphrase)
		again, err := getPassword(a.out, "Repeat passphrase: ")
		if err != nil {
			return err
		}
		defer wipe(again)
		if string(passphrase) != string(again) {
			return errors.New("passphrases do not match")
		}
		env, salt, verifier, err = envelope.Setup(passphrase)
		if err != nil {
			return err
		}
	}

	profile, err := a.client.Register(ctx, email, string(password), salt, verifier)
	if err != nil {
		return err
	}
	if err := a.cache.SaveIdentity(ctx, localcache.Identity{Email: email, Salt: salt, Verifier: verifier}); err != nil {
		a.log.Warn("failed to cache identity", zap.Error(err))
	}

	fmt.Fprintln(a.out, "Account created.")
	return a.startSession(ctx, profile.Email, profile.Settings, env)
}

// Login authenticates and, for encrypted accounts, unlocks the envelope.
// When the local cache holds the account's salt and verifier, a wrong
// passphrase is rejected before any network call. A passphrase that fails
// against the server-held verifier aborts the session entirely rather than
// signing in without a key.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out, "Enter password: ")
	if err != nil {
		return err
	}
	defer wipe(password)

	var passphrase []byte
	defer func() { wipe(passphrase) }()

	cached, cacheErr := a.cache.LoadIdentity(ctx)
	if cacheErr == nil && cached.Email == email && len(cached.Salt) > 0 {
		passphrase, err = getPassword(a.out, "Enter encryption passphrase: ")
		if err != nil {
			return err
		}
		if _, err := envelope.Unlock(passphrase, cached.Salt, cached.Verifier); err != nil {
			return err
		}
	}

	profile, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		return err
	}

	var env *envelope.Envelope
	if len(profile.EncryptionSalt) > 0 {
		if passphrase == nil {
			passphrase, err = getPassword(a.out, "Enter encryption passphrase: ")
			if err != nil {
				a.client.SignOut()
				return err
			}
		}
		env, err = envelope.Unlock(passphrase, profile.EncryptionSalt, profile.KeyVerifier)
		if err != nil {
			a.client.SignOut()
			return err
		}
	}

	if err := a.cache.SaveIdentity(ctx, localcache.Identity{
		Email:    email,
		Salt:     profile.EncryptionSalt,
		Verifier: profile.KeyVerifier,
	}); err != nil {
		a.log.Warn("failed to cache identity", zap.Error(err))
	}

	fmt.Fprintln(a.out, "Signed in.")
	return a.startSession(ctx, profile.Email, profile.Settings, env)
}

// Logout drops all session state. The envelope key does not survive it.
func (a *App) Logout(ctx context.Context) error {
	if a.sequencer != nil {
		a.sequencer.Stop()
	}
	a.endSession()
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

// New starts a blank note in the editor.
func (a *App) New(ctx context.Context) error {
	_, err := a.manager.Create()
	return err
}

// Save prompts for the editor fields and persists the current note.
func (a *App) Save(ctx context.Context) error {
	if a.manager.Current() == nil {
		return notes.ErrNoCurrentNote
	}
	title, err := getSimpleText(a.reader, "Title (empty for Untitled)", a.out)
	if err != nil {
		return err
	}
	body, err := getMultiline(a.reader, "Body", a.out)
	if err != nil {
		return err
	}
	if err := a.manager.Save(ctx, title, body); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved.")
	return nil
}

// List reloads and renders the note list.
func (a *App) List(ctx context.Context) error {
	return a.manager.List(ctx)
}

// Open displays a note addressed by list position or id.
func (a *App) Open(ctx context.Context, arg string) error {
	id, err := a.resolveID(arg)
	if err != nil {
		return err
	}
	return a.manager.Open(id)
}

// Select toggles a note in or out of the bulk selection.
func (a *App) Select(ctx context.Context, arg string) error {
	id, err := a.resolveID(arg)
	if err != nil {
		return err
	}
	a.tracker.Toggle(id)
	return a.manager.List(ctx)
}

// Delete removes the current note after confirmation.
func (a *App) Delete(ctx context.Context) error {
	return a.manager.Delete(ctx)
}

// DeleteSelected removes the selected notes as one atomic batch.
func (a *App) DeleteSelected(ctx context.Context) error {
	return a.manager.DeleteSelected(ctx)
}

// DeleteAll removes every note of the account.
func (a *App) DeleteAll(ctx context.Context) error {
	return a.manager.DeleteAll(ctx)
}

// Share marks the current note shared and prints its share code.
func (a *App) Share(ctx context.Context) error {
	code, err := a.manager.Share(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Share code: %s\n", code)
	return nil
}

// SyncShared re-fetches the current shared note from the server.
func (a *App) SyncShared(ctx context.Context) error {
	return a.manager.SyncShared(ctx)
}

// Export writes the current note to a file in the chosen format.
func (a *App) Export(ctx context.Context, formatArg string) error {
	var format export.Format
	switch formatArg {
	case "md", "markdown":
		format = export.FormatMarkdown
	case "txt", "text":
		format = export.FormatText
	case "pdf":
		format = export.FormatDocument
	default:
		return fmt.Errorf("%w: %q", export.ErrUnknownFormat, formatArg)
	}

	current := a.manager.Current()
	if current == nil {
		return notes.ErrNoCurrentNote
	}
	title, body, err := a.manager.CurrentPlaintext()
	if err != nil {
		return err
	}

	file, err := export.Export(format, title, body, current.CreatedAt, current.Author, nil)
	if err != nil {
		return err
	}
	if file == nil {
		return nil
	}
	if err := os.WriteFile(file.Name, file.Content, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", file.Name, err)
	}
	fmt.Fprintf(a.out, "Exported to %s\n", file.Name)
	return nil
}

// Read narrates the current note.
func (a *App) Read(ctx context.Context) error {
	title, body, err := a.manager.CurrentPlaintext()
	if err != nil {
		return err
	}
	a.sequencer.ReadNote(title, body)
	return nil
}

// ReadSelected narrates the selected notes in list order.
func (a *App) ReadSelected(ctx context.Context) error {
	selected, err := a.manager.SelectedPlaintext(ctx)
	if err != nil {
		return err
	}
	items := make([]speech.Item, 0, len(selected))
	for _, n := range selected {
		items = append(items, speech.Item{Title: n.Title, Body: n.Body})
	}
	a.sequencer.ReadNotes(items)
	return nil
}

// Pause, Resume and StopReading control the narration in flight.
func (a *App) Pause(ctx context.Context) error       { a.sequencer.Pause(); return nil }
func (a *App) Resume(ctx context.Context) error      { a.sequencer.Resume(); return nil }
func (a *App) StopReading(ctx context.Context) error { a.sequencer.Stop(); return nil }

// Settings prompts for display preferences and persists them into the
// profile.
func (a *App) Settings(ctx context.Context) error {
	s := a.sess.Settings
	var err error
	if s.BgColor, err = getSimpleText(a.reader, fmt.Sprintf("Background color [%s]", s.BgColor), a.out); err != nil {
		return err
	}
	if s.FontColor, err = getSimpleText(a.reader, fmt.Sprintf("Font color [%s]", s.FontColor), a.out); err != nil {
		return err
	}
	if s.FontStyle, err = getSimpleText(a.reader, fmt.Sprintf("Font style [%s]", s.FontStyle), a.out); err != nil {
		return err
	}
	s.TextToSpeech = a.confirm.Confirm("Enable text to speech?")

	if err := a.client.SaveSettings(ctx, s); err != nil {
		return err
	}
	a.sess.Settings = s
	fmt.Fprintln(a.out, "Settings saved.")
	return nil
}

// DeleteAccount removes the account and everything it owns, then wipes the
// local cache.
func (a *App) DeleteAccount(ctx context.Context) error {
	if !a.confirm.Confirm("Delete this account and ALL of its notes? This action cannot be undone!") {
		return nil
	}
	if err := a.client.DeleteAccount(ctx); err != nil {
		return err
	}
	if err := a.cache.Clear(ctx); err != nil {
		a.log.Warn("failed to clear identity cache", zap.Error(err))
	}
	a.endSession()
	fmt.Fprintln(a.out, "Account deleted.")
	return nil
}

// resolveID maps a 1-based list position onto a note id; anything that is
// not a valid position is treated as a raw id.
func (a *App) resolveID(arg string) (string, error) {
	if arg == "" {
		return "", errors.New("missing note argument")
	}
	// Note ids are numeric too, so only short numbers that land inside the
	// list are treated as positions.
	if idx, err := strconv.Atoi(arg); err == nil && len(arg) < 6 {
		list := a.manager.Notes()
		if idx < 1 || idx > len(list) {
			return "", fmt.Errorf("no note at position %d", idx)
		}
		return list[idx-1].ID, nil
	}
	return arg, nil
}
