package notion

import (
	"strings"
	"unicode/utf8"
)

// API limits.
const (
	// MaxBlocksPerRequest is the Notion cap on children per create/append.
	MaxBlocksPerRequest = 100

	// maxRichTextLength is the Notion cap on a single rich text content.
	maxRichTextLength = 2000

	richTextTruncationMarker = "..."
)

// RichText is a Notion rich text run.
type RichText struct {
	Type        string       `json:"type"`
	Text        TextContent  `json:"text"`
	Annotations *Annotations `json:"annotations,omitempty"`
}

// TextContent is the content of a text run.
type TextContent struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

// Link is an inline link target.
type Link struct {
	URL string `json:"url"`
}

// Annotations carries text styling.
type Annotations struct {
	Bold bool `json:"bold,omitempty"`
}

// Block is a Notion content block. Exactly one of the typed payloads is set,
// matching Type.
type Block struct {
	Object    string        `json:"object"`
	Type      string        `json:"type"`
	Paragraph *RichTextBody `json:"paragraph,omitempty"`
	Heading1  *RichTextBody `json:"heading_1,omitempty"`
	Heading2  *RichTextBody `json:"heading_2,omitempty"`
	Heading3  *RichTextBody `json:"heading_3,omitempty"`
	Bulleted  *RichTextBody `json:"bulleted_list_item,omitempty"`
	Embed     *EmbedBody    `json:"embed,omitempty"`
	Divider   *struct{}     `json:"divider,omitempty"`
}

// RichTextBody is the shared payload of text-bearing blocks.
type RichTextBody struct {
	RichText []RichText `json:"rich_text"`
}

// EmbedBody is the payload of an embed block.
type EmbedBody struct {
	URL string `json:"url"`
}

// NewText creates a plain rich text run, truncated to the API limit.
func NewText(content string) RichText {
	return RichText{Type: "text", Text: TextContent{Content: truncateRun(content)}}
}

// NewBoldText creates a bold rich text run, truncated to the API limit.
func NewBoldText(content string) RichText {
	return RichText{
		Type:        "text",
		Text:        TextContent{Content: truncateRun(content)},
		Annotations: &Annotations{Bold: true},
	}
}

// NewParagraph creates a paragraph block from rich text runs.
func NewParagraph(runs []RichText) Block {
	return Block{Object: "block", Type: "paragraph", Paragraph: &RichTextBody{RichText: runs}}
}

// NewEmbed creates an embed block for a URL.
func NewEmbed(url string) Block {
	return Block{Object: "block", Type: "embed", Embed: &EmbedBody{URL: url}}
}

// NewDivider creates a divider block.
func NewDivider() Block {
	return Block{Object: "block", Type: "divider", Divider: &struct{}{}}
}

func truncateRun(content string) string {
	if len(content) <= maxRichTextLength {
		return content
	}

	cut := maxRichTextLength - len(richTextTruncationMarker)
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}

	return content[:cut] + richTextTruncationMarker
}

// MarkdownToBlocks converts line-oriented Markdown into Notion blocks.
// Supported per line: "#", "##", "###" headings, "- " bullets, everything
// else a paragraph. Bold runs (**text**) become styled rich text everywhere.
func MarkdownToBlocks(markdown string) []Block {
	var blocks []Block

	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}

		blocks = append(blocks, lineToBlock(line))
	}

	return blocks
}

func lineToBlock(line string) Block {
	switch {
	case strings.HasPrefix(line, "### "):
		return Block{Object: "block", Type: "heading_3", Heading3: &RichTextBody{RichText: parseRuns(line[4:])}}
	case strings.HasPrefix(line, "## "):
		return Block{Object: "block", Type: "heading_2", Heading2: &RichTextBody{RichText: parseRuns(line[3:])}}
	case strings.HasPrefix(line, "# "):
		return Block{Object: "block", Type: "heading_1", Heading1: &RichTextBody{RichText: parseRuns(line[2:])}}
	case strings.HasPrefix(line, "- "):
		return Block{Object: "block", Type: "bulleted_list_item", Bulleted: &RichTextBody{RichText: parseRuns(line[2:])}}
	default:
		return NewParagraph(parseRuns(line))
	}
}

// parseRuns splits a line on ** markers into alternating plain and bold runs.
// An unclosed marker is treated as literal text.
func parseRuns(text string) []RichText {
	var runs []RichText

	for text != "" {
		open := strings.Index(text, "**")
		if open < 0 {
			runs = appendRun(runs, text, false)
			break
		}

		closing := strings.Index(text[open+2:], "**")
		if closing < 0 {
			runs = appendRun(runs, text, false)
			break
		}

		runs = appendRun(runs, text[:open], false)
		runs = appendRun(runs, text[open+2:open+2+closing], true)
		text = text[open+2+closing+2:]
	}

	if len(runs) == 0 {
		runs = []RichText{NewText("")}
	}

	return runs
}

func appendRun(runs []RichText, content string, bold bool) []RichText {
	if content == "" {
		return runs
	}

	if bold {
		return append(runs, NewBoldText(content))
	}

	return append(runs, NewText(content))
}
