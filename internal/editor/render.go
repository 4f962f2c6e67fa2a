package editor

import (
	"html"
	"math"
	"strings"
	"unicode/utf8"
)

// EmptyParagraphHTML 空文档的序列化结果
const EmptyParagraphHTML = "<p><br></p>"

const wordsPerMinute = 200

var blockTags = map[BlockType]string{
	BlockParagraph: "p",
	BlockH1:        "h1",
	BlockH2:        "h2",
	BlockH3:        "h3",
	BlockH4:        "h4",
	BlockH5:        "h5",
	BlockH6:        "h6",
	BlockQuote:     "blockquote",
	BlockListItem:  "li",
}

// HTML 序列化为规范 HTML，对同一文档重复解析与序列化结果不变
func (d Document) HTML() string {
	if len(d.Blocks) == 0 {
		return EmptyParagraphHTML
	}
	var b strings.Builder
	for i := 0; i < len(d.Blocks); {
		block := d.Blocks[i]
		if block.Type != BlockListItem {
			writeBlock(&b, block)
			i++
			continue
		}
		tag := "ul"
		if block.List == ListNumber {
			tag = "ol"
		}
		b.WriteString("<" + tag + ">")
		for i < len(d.Blocks) && d.Blocks[i].Type == BlockListItem && d.Blocks[i].List == block.List {
			writeBlock(&b, d.Blocks[i])
			i++
		}
		b.WriteString("</" + tag + ">")
	}
	return b.String()
}

func writeBlock(b *strings.Builder, block Block) {
	switch block.Type {
	case BlockCode:
		b.WriteString("<pre" + alignAttr(block.Align) + "><code>")
		b.WriteString(html.EscapeString(block.Text()))
		b.WriteString("</code></pre>")
	case BlockTable:
		b.WriteString("<table><tbody>")
		for _, row := range block.Cells {
			b.WriteString("<tr>")
			for _, cell := range row {
				b.WriteString("<td>" + html.EscapeString(cell) + "</td>")
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody></table>")
	case BlockImage:
		b.WriteString(`<img src="` + html.EscapeString(block.Src) + `" alt="` + html.EscapeString(block.Alt) + `">`)
	case BlockRule:
		b.WriteString("<hr>")
	default:
		tag, ok := blockTags[block.Type]
		if !ok {
			tag = "p"
		}
		b.WriteString("<" + tag + alignAttr(block.Align) + ">")
		if len(block.Runs) == 0 {
			b.WriteString("<br>")
		}
		for _, run := range block.Runs {
			writeRun(b, run)
		}
		b.WriteString("</" + tag + ">")
	}
}

func alignAttr(align Alignment) string {
	if align == AlignDefault {
		return ""
	}
	return ` style="text-align: ` + string(align) + `"`
}

func writeRun(b *strings.Builder, run Run) {
	var closers []string
	if run.Link != "" {
		b.WriteString(`<a href="` + html.EscapeString(run.Link) + `">`)
		closers = append(closers, "</a>")
	}
	if css := run.Style.css(); css != "" {
		b.WriteString(`<span style="` + html.EscapeString(css) + `">`)
		closers = append(closers, "</span>")
	}
	for _, flag := range formatOrder {
		if run.Format.Has(flag) {
			tag := formatTags[flag]
			b.WriteString("<" + tag + ">")
			closers = append(closers, "</"+tag+">")
		}
	}
	for i, line := range strings.Split(run.Text, "\n") {
		if i > 0 {
			b.WriteString("<br>")
		}
		b.WriteString(html.EscapeString(line))
	}
	for i := len(closers) - 1; i >= 0; i-- {
		b.WriteString(closers[i])
	}
}

func (s Style) css() string {
	var parts []string
	if s.Color != "" {
		parts = append(parts, "color: "+s.Color)
	}
	if s.Background != "" {
		parts = append(parts, "background-color: "+s.Background)
	}
	if s.FontSize != "" {
		parts = append(parts, "font-size: "+s.FontSize)
	}
	return strings.Join(parts, "; ")
}

// PlainText 按块拼接的纯文本
func (d Document) PlainText() string {
	lines := make([]string, 0, len(d.Blocks))
	for _, block := range d.Blocks {
		switch block.Type {
		case BlockTable:
			for _, row := range block.Cells {
				lines = append(lines, strings.Join(row, " "))
			}
		case BlockImage:
			if block.Alt != "" {
				lines = append(lines, block.Alt)
			}
		case BlockRule:
		default:
			lines = append(lines, block.Text())
		}
	}
	return strings.Join(lines, "\n")
}

// WordCount 正文词数
func WordCount(content string) int {
	return len(strings.Fields(ParseHTML(content).PlainText()))
}

// ReadingTime 预计阅读分钟数，至少 1 分钟
func ReadingTime(content string) int {
	minutes := int(math.Round(float64(WordCount(content)) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// Excerpt 从 HTML 正文截取纯文本摘要，超长时在词边界截断并追加省略号
func Excerpt(content string, maxRunes int) string {
	text := strings.Join(strings.Fields(ParseHTML(content).PlainText()), " ")
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	cut := string(runes[:maxRunes-1])
	if runes[maxRunes-1] != ' ' {
		if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
			cut = cut[:idx]
		}
	}
	return strings.TrimRight(cut, " ,.;:") + "…"
}
