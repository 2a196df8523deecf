package markdown

import (
	"regexp"
	"strings"
)

// Matches fenced code blocks. Group 1 is the language tag, group 2 the body.
var codeFenceRegexp = regexp.MustCompile("(?sm)^```([a-zA-Z0-9_+-]*)\\n(.*?)^```")

// Block is a parsed segment of a message: plain prose or a fenced code block.
type Block interface {
	md() string
	Content() string
	Extension() string
}

// TextBlock holds prose between code fences.
type TextBlock struct {
	Text string
}

func (b *TextBlock) md() string        { return b.Text }
func (b *TextBlock) Content() string   { return b.Text }
func (b *TextBlock) Extension() string { return "txt" }

// CodeBlock holds the body of a fenced code block.
type CodeBlock struct {
	language string
	code     string
}

func (b *CodeBlock) md() string {
	return "```" + b.language + "\n" + b.code + "\n```"
}

func (b *CodeBlock) Content() string   { return b.code }
func (b *CodeBlock) Extension() string { return b.language }

// ParseBlocks splits message content into alternating text and code blocks.
func ParseBlocks(content string) []Block {
	matches := codeFenceRegexp.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		if content == "" {
			return nil
		}
		return []Block{&TextBlock{Text: content}}
	}

	var blocks []Block
	lastEnd := 0
	for _, match := range matches {
		fenceStart, fenceEnd := match[0], match[1]
		if fenceStart > lastEnd {
			if text := content[lastEnd:fenceStart]; text != "" {
				blocks = append(blocks, &TextBlock{Text: text})
			}
		}

		language := ""
		if match[2] >= 0 {
			language = content[match[2]:match[3]]
		}
		if language == "" {
			language = "md"
		}

		code := ""
		if match[4] >= 0 {
			code = content[match[4]:match[5]]
		}

		blocks = append(blocks, &CodeBlock{
			language: language,
			code:     strings.ReplaceAll(strings.Trim(code, "\n"), "\t", "  "), // tabs break glamour's gutter.
		})
		lastEnd = fenceEnd
	}

	if lastEnd < len(content) {
		if text := content[lastEnd:]; text != "" {
			blocks = append(blocks, &TextBlock{Text: text})
		}
	}
	return blocks
}

// CodeBlocks returns only the fenced code blocks of the content, in order.
func CodeBlocks(content string) []*CodeBlock {
	var out []*CodeBlock
	for _, block := range ParseBlocks(content) {
		if code, ok := block.(*CodeBlock); ok {
			out = append(out, code)
		}
	}
	return out
}
