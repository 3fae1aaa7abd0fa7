// Package export serializes a note into one of several text encodings for
// download, or hands it to an external document renderer.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Format selects the export encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
	FormatDocument Format = "pdf"
)

// ErrUnknownFormat is returned for a format outside the supported set.
var ErrUnknownFormat = errors.New("unknown export format")

// File is an in-memory download: the caller decides where it lands.
type File struct {
	Name    string
	MIME    string
	Content []byte
}

// DocumentRenderer is the external collaborator producing a paginated
// document render (the html2pdf analogue). Its output never passes back
// through this package.
type DocumentRenderer interface {
	Render(title, metadata, body string) error
}

const metadataTimeLayout = time.DateTime

// fileName derives a download name from the title. Path separators are
// replaced so a title like "notes/today" cannot escape the target directory.
func fileName(title, ext string) string {
	name := strings.NewReplacer("/", "-", "\\", "-").Replace(title)
	return name + ext
}

// metadataBlock formats the read-only metadata lines shared by all formats.
func metadataBlock(createdAt time.Time, author string) string {
	return fmt.Sprintf("Created: %s\nAuthor: %s\n\n", createdAt.Format(metadataTimeLayout), author)
}

// Export serializes the note. For FormatDocument the renderer collaborator
// takes over and the returned file is nil. An empty title falls back to
// "Untitled" in both the content and the file name.
func Export(format Format, title, body string, createdAt time.Time, author string, renderer DocumentRenderer) (*File, error) {
	if title == "" {
		title = "Untitled"
	}
	metadata := metadataBlock(createdAt, author)

	switch format {
	case FormatMarkdown:
		return &File{
			Name:    fileName(title, ".md"),
			MIME:    "text/markdown",
			Content: []byte(fmt.Sprintf("# %s\n\n%s%s", title, metadata, body)),
		}, nil
	case FormatText:
		return &File{
			Name:    fileName(title, ".txt"),
			MIME:    "text/plain",
			Content: []byte(fmt.Sprintf("%s\n\n%s%s", title, metadata, body)),
		}, nil
	case FormatDocument:
		if renderer == nil {
			return nil, errors.New("no document renderer available")
		}
		if err := renderer.Render(title, metadata, body); err != nil {
			return nil, fmt.Errorf("render document: %w", err)
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
