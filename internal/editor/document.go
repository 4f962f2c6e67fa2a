// Package editor 提供无界面的富文本文档模型，负责 HTML 与结构化文档之间的双向同步，
// 并根据选区计算工具栏状态。
package editor

import (
	"unicode/utf8"
)

// BlockType 块类型
type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockH1        BlockType = "h1"
	BlockH2        BlockType = "h2"
	BlockH3        BlockType = "h3"
	BlockH4        BlockType = "h4"
	BlockH5        BlockType = "h5"
	BlockH6        BlockType = "h6"
	BlockQuote     BlockType = "quote"
	BlockCode      BlockType = "code"
	BlockListItem  BlockType = "listitem"
	BlockTable     BlockType = "table"
	BlockImage     BlockType = "image"
	BlockRule      BlockType = "hr"
)

// ListKind 列表类型
type ListKind string

const (
	ListNone   ListKind = ""
	ListBullet ListKind = "bullet"
	ListNumber ListKind = "number"
)

// Alignment 块对齐方式，空值表示默认
type Alignment string

const (
	AlignDefault Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "justify"
)

// Format 字符格式位
type Format uint16

const (
	FormatBold Format = 1 << iota
	FormatItalic
	FormatUnderline
	FormatStrikethrough
	FormatCode
	FormatHighlight
	FormatSuperscript
	FormatSubscript
)

// formatOrder 序列化时的标签嵌套顺序
var formatOrder = []Format{
	FormatBold,
	FormatItalic,
	FormatUnderline,
	FormatStrikethrough,
	FormatCode,
	FormatHighlight,
	FormatSuperscript,
	FormatSubscript,
}

var formatTags = map[Format]string{
	FormatBold:          "strong",
	FormatItalic:        "em",
	FormatUnderline:     "u",
	FormatStrikethrough: "s",
	FormatCode:          "code",
	FormatHighlight:     "mark",
	FormatSuperscript:   "sup",
	FormatSubscript:     "sub",
}

// Has 判断是否包含指定格式
func (f Format) Has(flag Format) bool {
	return f&flag != 0
}

func isSingleFormat(flag Format) bool {
	_, ok := formatTags[flag]
	return ok
}

// Style 字符级样式覆盖，值保持文档中的原始写法
type Style struct {
	Color      string
	Background string
	FontSize   string
}

// IsZero 是否无样式
func (s Style) IsZero() bool {
	return s == Style{}
}

// Run 一段格式一致的文本
type Run struct {
	Text   string
	Format Format
	Style  Style
	Link   string
}

func (r Run) sameAttrs(other Run) bool {
	return r.Format == other.Format && r.Style == other.Style && r.Link == other.Link
}

// Block 文档块
type Block struct {
	Type  BlockType
	List  ListKind
	Align Alignment
	Runs  []Run
	Cells [][]string // 表格单元格（行 × 列）
	Src   string     // 图片地址
	Alt   string
}

// IsText 是否为可容纳行内文本的块
func (b Block) IsText() bool {
	switch b.Type {
	case BlockTable, BlockImage, BlockRule:
		return false
	default:
		return true
	}
}

// Text 块内纯文本
func (b Block) Text() string {
	if len(b.Runs) == 1 {
		return b.Runs[0].Text
	}
	size := 0
	for _, run := range b.Runs {
		size += len(run.Text)
	}
	buf := make([]byte, 0, size)
	for _, run := range b.Runs {
		buf = append(buf, run.Text...)
	}
	return string(buf)
}

// Len 块内文本长度（按 rune 计）
func (b Block) Len() int {
	n := 0
	for _, run := range b.Runs {
		n += utf8.RuneCountInString(run.Text)
	}
	return n
}

func (b Block) clone() Block {
	out := b
	if b.Runs != nil {
		out.Runs = append([]Run(nil), b.Runs...)
	}
	if b.Cells != nil {
		out.Cells = make([][]string, len(b.Cells))
		for i, row := range b.Cells {
			out.Cells[i] = append([]string(nil), row...)
		}
	}
	return out
}

// Document 结构化文档
type Document struct {
	Blocks []Block
}

// EmptyDocument 仅含一个空段落的文档
func EmptyDocument() Document {
	return Document{Blocks: []Block{{Type: BlockParagraph}}}
}

// Clone 深拷贝文档
func (d Document) Clone() Document {
	out := Document{Blocks: make([]Block, len(d.Blocks))}
	for i, block := range d.Blocks {
		out.Blocks[i] = block.clone()
	}
	return out
}

// normalize 合并相邻同格式文本段并清理空段，保证至少一个块
func (d *Document) normalize() {
	blocks := d.Blocks[:0]
	for _, block := range d.Blocks {
		if block.IsText() {
			block.Runs = mergeRuns(block.Runs)
			block.Cells = nil
			block.Src, block.Alt = "", ""
			if block.Type != BlockListItem {
				block.List = ListNone
			} else if block.List == ListNone {
				block.List = ListBullet
			}
			if block.Type == BlockCode {
				block.Runs = flattenRuns(block.Runs)
			}
		} else {
			block.Runs = nil
			block.List = ListNone
		}
		blocks = append(blocks, block)
	}
	d.Blocks = blocks
	if len(d.Blocks) == 0 {
		d.Blocks = []Block{{Type: BlockParagraph}}
	}
}

func mergeRuns(runs []Run) []Run {
	if len(runs) == 0 {
		return nil
	}
	out := make([]Run, 0, len(runs))
	for _, run := range runs {
		if run.Text == "" {
			continue
		}
		if n := len(out); n > 0 && out[n-1].sameAttrs(run) {
			out[n-1].Text += run.Text
			continue
		}
		out = append(out, run)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// flattenRuns 代码块只保留纯文本
func flattenRuns(runs []Run) []Run {
	if len(runs) == 0 {
		return nil
	}
	text := Block{Runs: runs}.Text()
	if text == "" {
		return nil
	}
	return []Run{{Text: text}}
}

// splitRuns 在 offset 处切分文本段，返回切分点之后第一个文本段的下标
func splitRuns(runs []Run, offset int) ([]Run, int) {
	if offset <= 0 {
		return runs, 0
	}
	pos := 0
	for i, run := range runs {
		n := utf8.RuneCountInString(run.Text)
		if offset == pos {
			return runs, i
		}
		if offset < pos+n {
			r := []rune(run.Text)
			left, right := run, run
			left.Text = string(r[:offset-pos])
			right.Text = string(r[offset-pos:])
			out := make([]Run, 0, len(runs)+1)
			out = append(out, runs[:i]...)
			out = append(out, left, right)
			out = append(out, runs[i+1:]...)
			return out, i + 1
		}
		pos += n
	}
	return runs, len(runs)
}

// runIndexAt 返回光标处生效的文本段下标：光标前一个字符所在段，行首取第一段；无文本时返回 -1
func runIndexAt(block Block, offset int) int {
	if len(block.Runs) == 0 {
		return -1
	}
	if offset <= 0 {
		return 0
	}
	pos := 0
	for i, run := range block.Runs {
		n := utf8.RuneCountInString(run.Text)
		if offset <= pos+n {
			return i
		}
		pos += n
	}
	return len(block.Runs) - 1
}

func runAt(block Block, offset int) (Run, bool) {
	idx := runIndexAt(block, offset)
	if idx < 0 {
		return Run{}, false
	}
	return block.Runs[idx], true
}

// sliceRuns 截取 [from, to) 范围内的文本段
func sliceRuns(runs []Run, from, to int) []Run {
	out := make([]Run, 0, len(runs))
	pos := 0
	for _, run := range runs {
		r := []rune(run.Text)
		lo, hi := clampInt(from-pos, 0, len(r)), clampInt(to-pos, 0, len(r))
		if lo < hi {
			run.Text = string(r[lo:hi])
			out = append(out, run)
		}
		pos += len(r)
	}
	return out
}

// cutRuns 删除 [from, to) 范围内的文本
func cutRuns(runs []Run, from, to int) []Run {
	out := make([]Run, 0, len(runs))
	pos := 0
	for _, run := range runs {
		r := []rune(run.Text)
		lo, hi := clampInt(from-pos, 0, len(r)), clampInt(to-pos, 0, len(r))
		if lo < hi {
			run.Text = string(r[:lo]) + string(r[hi:])
		}
		if run.Text != "" {
			out = append(out, run)
		}
		pos += len(r)
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
