package editor

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var textBlockTags = map[string]BlockType{
	"p":          BlockParagraph,
	"h1":         BlockH1,
	"h2":         BlockH2,
	"h3":         BlockH3,
	"h4":         BlockH4,
	"h5":         BlockH5,
	"h6":         BlockH6,
	"blockquote": BlockQuote,
}

// containerTags 只作为容器，子节点按块级处理
var containerTags = map[string]bool{
	"html": true, "body": true, "div": true, "section": true, "article": true,
	"main": true, "header": true, "footer": true, "aside": true, "nav": true,
	"figure": true, "figcaption": true, "form": true, "center": true,
	"details": true, "summary": true, "address": true, "fieldset": true,
	"dl": true, "dt": true, "dd": true,
}

var skippedTags = map[string]bool{
	"head": true, "title": true, "meta": true, "link": true, "script": true,
	"style": true, "template": true, "noscript": true, "iframe": true,
	"object": true, "embed": true, "input": true, "select": true,
	"textarea": true, "button": true,
}

// ParseHTML 将 HTML 解析为文档，空输入或解析失败时返回仅含空段落的文档
func ParseHTML(raw string) (doc Document) {
	if strings.TrimSpace(raw) == "" {
		return EmptyDocument()
	}
	defer func() {
		if r := recover(); r != nil {
			doc = EmptyDocument()
		}
	}()
	parsed, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return EmptyDocument()
	}
	body := parsed.Find("body")
	if body.Length() == 0 {
		return EmptyDocument()
	}
	p := &parser{}
	for _, node := range body.Nodes {
		p.walkBlocks(node, AlignDefault)
	}
	p.flush()
	doc = Document{Blocks: p.blocks}
	doc.normalize()
	return doc
}

type parser struct {
	blocks    []Block
	cur       *Block
	lastSpace bool
}

func (p *parser) open(def Block) {
	p.flush()
	block := def
	block.Runs = nil
	p.cur = &block
	p.lastSpace = false
}

func (p *parser) ensure(def Block) {
	if p.cur == nil {
		p.open(def)
	}
}

func (p *parser) flush() {
	if p.cur == nil {
		return
	}
	block := *p.cur
	block.Runs = trimTrailingBreaks(block.Runs)
	p.blocks = append(p.blocks, block)
	p.cur = nil
	p.lastSpace = false
}

func (p *parser) atLineStart() bool {
	if p.cur == nil {
		return true
	}
	for i := len(p.cur.Runs) - 1; i >= 0; i-- {
		text := p.cur.Runs[i].Text
		if text == "" {
			continue
		}
		return strings.HasSuffix(text, "\n")
	}
	return true
}

func (p *parser) appendText(text string, attrs Run) {
	var b strings.Builder
	lineStart := p.atLineStart()
	for _, r := range text {
		if isCollapsibleSpace(r) {
			if p.lastSpace || lineStart {
				continue
			}
			b.WriteByte(' ')
			p.lastSpace = true
			continue
		}
		b.WriteRune(r)
		p.lastSpace = false
		lineStart = false
	}
	if b.Len() == 0 {
		return
	}
	attrs.Text = b.String()
	p.cur.Runs = append(p.cur.Runs, attrs)
}

func (p *parser) newline(attrs Run) {
	attrs.Text = "\n"
	p.cur.Runs = append(p.cur.Runs, attrs)
	p.lastSpace = false
}

func (p *parser) walkBlocks(n *html.Node, align Alignment) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.blockNode(c, align)
	}
}

func (p *parser) blockNode(n *html.Node, align Alignment) {
	paragraph := Block{Type: BlockParagraph, Align: align}
	switch n.Type {
	case html.TextNode:
		if p.cur == nil && strings.TrimSpace(n.Data) == "" {
			return
		}
		p.ensure(paragraph)
		p.appendText(n.Data, Run{})
		return
	case html.ElementNode:
	default:
		return
	}
	if skippedTags[n.Data] {
		return
	}
	own := elementAlign(n, align)
	if blockType, ok := textBlockTags[n.Data]; ok {
		p.textBlock(n, Block{Type: blockType, Align: own})
		return
	}
	switch n.Data {
	case "pre":
		p.flush()
		p.blocks = append(p.blocks, Block{Type: BlockCode, Align: own, Runs: []Run{{Text: preText(n)}}})
	case "ul", "ol":
		p.flush()
		p.list(n, listKindOf(n), own)
	case "li":
		p.listItem(n, ListBullet, align)
	case "table":
		p.flush()
		p.table(n)
	case "img":
		p.flush()
		p.image(n)
	case "hr":
		p.flush()
		p.blocks = append(p.blocks, Block{Type: BlockRule})
	case "br":
		p.ensure(paragraph)
		p.newline(Run{})
	default:
		if containerTags[n.Data] {
			p.flush()
			p.walkBlocks(n, own)
			p.flush()
			return
		}
		p.inlineNode(n, Run{}, paragraph)
	}
}

// textBlock 段落类块，空块也保留
func (p *parser) textBlock(n *html.Node, def Block) {
	p.flush()
	before := len(p.blocks)
	p.inlineChildren(n, Run{}, def)
	p.flush()
	if len(p.blocks) == before {
		p.blocks = append(p.blocks, def)
	}
}

func (p *parser) inlineChildren(n *html.Node, attrs Run, def Block) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.inlineNode(c, attrs, def)
	}
}

func (p *parser) inlineNode(n *html.Node, attrs Run, def Block) {
	switch n.Type {
	case html.TextNode:
		if p.cur == nil {
			if strings.TrimSpace(n.Data) == "" {
				return
			}
			p.open(def)
		}
		p.appendText(n.Data, attrs)
		return
	case html.ElementNode:
	default:
		return
	}
	if skippedTags[n.Data] {
		return
	}
	switch n.Data {
	case "br":
		p.ensure(def)
		p.newline(attrs)
		return
	case "img":
		p.flush()
		p.image(n)
		return
	case "ul", "ol":
		p.flush()
		p.list(n, listKindOf(n), def.Align)
		return
	case "table":
		p.flush()
		p.table(n)
		return
	case "hr":
		p.flush()
		p.blocks = append(p.blocks, Block{Type: BlockRule})
		return
	}
	_, nestedBlock := textBlockTags[n.Data]
	if (nestedBlock || containerTags[n.Data] || n.Data == "li" || n.Data == "pre") && p.cur != nil && p.cur.Len() > 0 {
		p.newline(attrs)
	}
	p.inlineChildren(n, inheritAttrs(n, attrs), def)
}

func (p *parser) list(n *html.Node, kind ListKind, align Alignment) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "":
			continue
		case c.Type == html.ElementNode && c.Data == "li":
			p.listItem(c, kind, align)
		case c.Type == html.ElementNode && (c.Data == "ul" || c.Data == "ol"):
			p.flush()
			p.list(c, listKindOf(c), align)
		default:
			def := Block{Type: BlockListItem, List: kind, Align: align}
			p.flush()
			p.inlineNode(c, Run{}, def)
			p.flush()
		}
	}
}

// listItem 嵌套列表会被展开为同级列表项
func (p *parser) listItem(li *html.Node, kind ListKind, align Alignment) {
	def := Block{Type: BlockListItem, List: kind, Align: elementAlign(li, align)}
	p.flush()
	before := len(p.blocks)
	p.inlineChildren(li, Run{}, def)
	p.flush()
	if len(p.blocks) == before {
		p.blocks = append(p.blocks, def)
	}
}

func (p *parser) table(n *html.Node) {
	var rows [][]string
	var visit func(node *html.Node)
	visit = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead", "tbody", "tfoot":
				visit(c)
			case "tr":
				var row []string
				for cell := c.FirstChild; cell != nil; cell = cell.NextSibling {
					if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
						row = append(row, collapseSpaces(textContent(cell)))
					}
				}
				rows = append(rows, row)
			}
		}
	}
	visit(n)
	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if len(rows) == 0 || cols == 0 {
		return
	}
	for i := range rows {
		for len(rows[i]) < cols {
			rows[i] = append(rows[i], "")
		}
	}
	p.blocks = append(p.blocks, Block{Type: BlockTable, Cells: rows})
}

func (p *parser) image(n *html.Node) {
	src := SafeURL(attrValue(n, "src"))
	if src == "" {
		return
	}
	p.blocks = append(p.blocks, Block{Type: BlockImage, Src: src, Alt: attrValue(n, "alt")})
}

func inheritAttrs(n *html.Node, attrs Run) Run {
	switch n.Data {
	case "strong", "b":
		attrs.Format |= FormatBold
	case "em", "i":
		attrs.Format |= FormatItalic
	case "u", "ins":
		attrs.Format |= FormatUnderline
	case "s", "strike", "del":
		attrs.Format |= FormatStrikethrough
	case "code", "kbd", "samp", "tt":
		attrs.Format |= FormatCode
	case "mark":
		attrs.Format |= FormatHighlight
	case "sup":
		attrs.Format = attrs.Format&^FormatSubscript | FormatSuperscript
	case "sub":
		attrs.Format = attrs.Format&^FormatSuperscript | FormatSubscript
	case "a":
		if href := SafeURL(attrValue(n, "href")); href != "" {
			attrs.Link = href
		}
	}
	applyInlineStyle(&attrs, attrValue(n, "style"))
	return attrs
}

func applyInlineStyle(attrs *Run, style string) {
	for _, decl := range strings.Split(style, ";") {
		key, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		lower := strings.ToLower(value)
		switch key {
		case "color":
			attrs.Style.Color = value
		case "background-color":
			attrs.Style.Background = value
		case "font-size":
			attrs.Style.FontSize = value
		case "font-weight":
			if lower == "bold" || lower == "bolder" {
				attrs.Format |= FormatBold
			} else if weight, err := strconv.Atoi(lower); err == nil && weight >= 600 {
				attrs.Format |= FormatBold
			}
		case "font-style":
			if lower == "italic" || lower == "oblique" {
				attrs.Format |= FormatItalic
			}
		case "text-decoration", "text-decoration-line":
			if strings.Contains(lower, "underline") {
				attrs.Format |= FormatUnderline
			}
			if strings.Contains(lower, "line-through") {
				attrs.Format |= FormatStrikethrough
			}
		case "vertical-align":
			switch lower {
			case "super":
				attrs.Format = attrs.Format&^FormatSubscript | FormatSuperscript
			case "sub":
				attrs.Format = attrs.Format&^FormatSuperscript | FormatSubscript
			}
		}
	}
}

func elementAlign(n *html.Node, inherited Alignment) Alignment {
	for _, decl := range strings.Split(attrValue(n, "style"), ";") {
		key, value, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), "text-align") {
			if align, valid := parseAlignment(value); valid {
				return align
			}
		}
	}
	if align, valid := parseAlignment(attrValue(n, "align")); valid {
		return align
	}
	return inherited
}

func parseAlignment(raw string) (Alignment, bool) {
	switch Alignment(strings.ToLower(strings.TrimSpace(raw))) {
	case AlignLeft:
		return AlignLeft, true
	case AlignCenter:
		return AlignCenter, true
	case AlignRight:
		return AlignRight, true
	case AlignJustify:
		return AlignJustify, true
	}
	return AlignDefault, false
}

func listKindOf(n *html.Node) ListKind {
	if n.Data == "ol" {
		return ListNumber
	}
	return ListBullet
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		switch {
		case node.Type == html.TextNode:
			b.WriteString(node.Data)
		case node.Type == html.ElementNode && node.Data == "br":
			b.WriteByte('\n')
		case node.Type == html.ElementNode && skippedTags[node.Data]:
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// preText 代码块保留原始空白
func preText(n *html.Node) string {
	return textContent(n)
}

func isCollapsibleSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

func collapseSpaces(s string) string {
	return strings.Join(strings.FieldsFunc(s, isCollapsibleSpace), " ")
}

func trimTrailingBreaks(runs []Run) []Run {
	for len(runs) > 0 {
		last := len(runs) - 1
		trimmed := strings.TrimRight(runs[last].Text, " \n")
		if trimmed != "" {
			runs[last].Text = trimmed
			return runs
		}
		runs = runs[:last]
	}
	return runs
}

// SafeURL 过滤脚本协议，返回去除首尾空白后的地址；不安全时返回空串
func SafeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	compact := strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return -1
		}
		return r
	}, strings.ToLower(trimmed))
	switch {
	case strings.HasPrefix(compact, "javascript:"), strings.HasPrefix(compact, "vbscript:"):
		return ""
	case strings.HasPrefix(compact, "data:") && !strings.HasPrefix(compact, "data:image/"):
		return ""
	}
	return trimmed
}
