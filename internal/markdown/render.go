package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// Renderer renders message content with syntax highlighting.
// Finalized messages are cached by index so scrolling a long
// conversation does not re-render the whole transcript.
type Renderer struct {
	glamour      *glamour.TermRenderer
	width        int
	messageCache map[int]string
	blockCache   map[int]string

	// Incremental state for the block currently streaming in.
	streamBlockIndex      int
	streamBlockLineOffset int
	streamBlockCache      string
}

// NewRenderer creates a renderer wrapping at the given width.
func NewRenderer(width int) (*Renderer, error) {
	gr, err := glamour.NewTermRenderer(
		glamour.WithStyles(customStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		glamour:      gr,
		width:        width,
		messageCache: map[int]string{},
		blockCache:   map[int]string{},
	}, nil
}

// ToMarkdown renders message content. messageIndex keys the cache; pass
// finalized=false while the message is still streaming so the trailing
// block is rendered incrementally.
func (r *Renderer) ToMarkdown(content string, messageIndex int, finalized bool) string {
	if md, ok := r.messageCache[messageIndex]; ok {
		return md
	}

	blocks := ParseBlocks(content)
	var sb strings.Builder
	for i, block := range blocks {
		blockIndex := messageIndex*1_000_000 + i
		if md, ok := r.blockCache[blockIndex]; ok {
			sb.WriteString(md)
			if i < len(blocks)-1 {
				sb.WriteString("\n")
			}
			continue
		}

		streaming := !finalized && i == len(blocks)-1
		var md string
		if streaming {
			md = r.renderStreaming(block, blockIndex)
		} else {
			md = r.renderBlock(block.md())
			r.blockCache[blockIndex] = md
		}
		sb.WriteString(md)
		if i < len(blocks)-1 {
			sb.WriteString("\n")
		}
	}

	result := sb.String()
	if finalized {
		r.messageCache[messageIndex] = result
	}
	return result
}

// SetWidth rebuilds the renderer if the terminal width changed.
func (r *Renderer) SetWidth(width int) error {
	if r.width == width {
		return nil
	}
	newRenderer, err := NewRenderer(width)
	if err != nil {
		return err
	}
	*r = *newRenderer
	return nil
}

// renderStreaming renders a block that is still receiving tokens.
// Complete lines get full markdown treatment, the trailing partial
// line is appended as plain text.
func (r *Renderer) renderStreaming(block Block, blockIndex int) string {
	if r.streamBlockIndex != blockIndex {
		r.streamBlockIndex = blockIndex
		r.streamBlockLineOffset = 0
		r.streamBlockCache = ""
	}

	var content, language string
	var isCode bool
	switch b := block.(type) {
	case *TextBlock:
		content = b.Text
	case *CodeBlock:
		content = b.code
		isCode = true
		language = b.language
	default:
		return r.streamBlockCache
	}
	if content == "" {
		return r.streamBlockCache
	}

	lines := strings.Split(content, "\n")
	completeLines := len(lines) - 1

	if completeLines > r.streamBlockLineOffset {
		completeContent := strings.Join(lines[:completeLines], "\n")
		if completeContent != "" {
			toRender := completeContent
			if isCode {
				toRender = "```" + language + "\n" + completeContent + "\n```"
			}
			r.streamBlockCache = strings.TrimSuffix(r.renderBlock(toRender), "\n")
		}
		r.streamBlockLineOffset = completeLines
	}

	partial := lines[len(lines)-1]
	if partial == "" {
		return r.streamBlockCache
	}
	if r.streamBlockCache == "" {
		return partial
	}
	return r.streamBlockCache + partial
}

func (r *Renderer) renderBlock(content string) string {
	rendered, err := r.glamour.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}

// customStyle strips glamour's default margins so messages sit flush
// inside their bubbles.
func customStyle() ansi.StyleConfig {
	style := styles.DraculaStyleConfig
	zero := uint(0)
	style.Document.Margin = &zero
	style.CodeBlock.Margin = &zero
	style.CodeBlock.Indent = &zero
	style.CodeBlock.Prefix = ""
	style.CodeBlock.BlockPrefix = ""

	style.Code.Margin = &zero
	style.Code.Indent = &zero
	style.Code.Prefix = ""
	style.Code.Suffix = ""

	style.Paragraph.BlockPrefix = ""
	style.Paragraph.BlockSuffix = ""

	return style
}
