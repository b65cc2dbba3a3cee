// Package export renders a conversation to a standalone HTML transcript.
// Assistant replies are treated as markdown with syntax-highlighted code
// blocks; user messages are escaped verbatim.
package export

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"io"

	highlighting "github.com/yuin/goldmark-highlighting/v2"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/kbhargava/promptline/internal/api"
)

// Renderer converts conversations to HTML transcripts.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a Renderer with GFM extensions and chroma highlighting.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				highlighting.NewHighlighting(
					highlighting.WithStyle("monokai"),
				),
			),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		),
	}
}

// Render writes a full HTML document for the conversation to w.
func (r *Renderer) Render(w io.Writer, conv api.Conversation) error {
	title := conv.Title
	if title == "" {
		title = "Conversation"
	}

	escaped := stdhtml.EscapeString(title)
	if _, err := fmt.Fprintf(w, transcriptHeader, escaped, escaped); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, msg := range conv.Messages {
		if err := r.renderMessage(w, i, msg); err != nil {
			return err
		}
	}

	if _, err := io.WriteString(w, transcriptFooter); err != nil {
		return fmt.Errorf("writing footer: %w", err)
	}
	return nil
}

func (r *Renderer) renderMessage(w io.Writer, idx int, msg api.Message) error {
	role := string(msg.Role)

	var body string
	if msg.Role == api.RoleAssistant {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(msg.Content), &buf); err != nil {
			return fmt.Errorf("rendering message %d: %w", idx, err)
		}
		body = buf.String()
	} else {
		body = "<p>" + stdhtml.EscapeString(msg.Content) + "</p>\n"
	}

	_, err := fmt.Fprintf(w, "<section class=\"turn %s\">\n<h2>%s</h2>\n%s</section>\n",
		role, stdhtml.EscapeString(role), body)
	if err != nil {
		return fmt.Errorf("writing message %d: %w", idx, err)
	}
	return nil
}

const transcriptHeader = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; }
.turn { border-left: 3px solid #ccc; margin: 1rem 0; padding: 0.25rem 1rem; }
.turn.user { border-color: #3b82f6; }
.turn.assistant { border-color: #a855f7; }
.turn h2 { font-size: 0.8rem; text-transform: uppercase; letter-spacing: 0.08em; color: #666; }
pre { overflow-x: auto; padding: 0.75rem; border-radius: 6px; }
</style>
</head>
<body>
<h1>%s</h1>
`

const transcriptFooter = `</body>
</html>
`
