package editor

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	MinFontSize  = 10
	MaxFontSize  = 72
	FontSizeStep = 2
	maxTableSpan = 50
	defaultTable = "3x3"
	defaultURL   = "https://"
)

// Prompter 向用户请求一行输入，ok=false 表示取消
type Prompter interface {
	Prompt(message, defaultValue string) (value string, ok bool)
}

// PromptFunc 函数形式的 Prompter
type PromptFunc func(message, defaultValue string) (string, bool)

// Prompt 实现 Prompter
func (f PromptFunc) Prompt(message, defaultValue string) (string, bool) {
	return f(message, defaultValue)
}

// ToggleFormat 切换选中文本的字符格式；光标状态下为空操作
func (s *Session) ToggleFormat(flag Format) error {
	if !isSingleFormat(flag) {
		return ErrUnsupportedFormat
	}
	return s.Apply(func(doc *Document, sel *Selection) error {
		if sel.Collapsed() {
			return nil
		}
		active, touched := true, false
		forEachSelectedRun(*doc, *sel, func(bi int, run Run) {
			if doc.Blocks[bi].Type == BlockCode {
				return
			}
			touched = true
			if !run.Format.Has(flag) {
				active = false
			}
		})
		if !touched {
			return nil
		}
		mapSelectedRuns(doc, *sel, func(run *Run) {
			if active {
				run.Format &^= flag
				return
			}
			run.Format |= flag
			switch flag {
			case FormatSuperscript:
				run.Format &^= FormatSubscript
			case FormatSubscript:
				run.Format &^= FormatSuperscript
			}
		})
		return nil
	})
}

// SetBlockType 将选区覆盖的文本块设为指定类型
func (s *Session) SetBlockType(blockType BlockType) error {
	switch blockType {
	case BlockParagraph, BlockH1, BlockH2, BlockH3, BlockH4, BlockH5, BlockH6, BlockQuote, BlockCode:
	default:
		return ErrUnsupportedBlock
	}
	return s.Apply(func(doc *Document, sel *Selection) error {
		forEachSelectedBlock(doc, *sel, func(block *Block) {
			if !block.IsText() {
				return
			}
			block.Type = blockType
			block.List = ListNone
		})
		return nil
	})
}

// SetAlignment 设置选区覆盖块的对齐方式
func (s *Session) SetAlignment(align Alignment) error {
	if align != AlignDefault {
		if _, ok := parseAlignment(string(align)); !ok {
			return fmt.Errorf("unsupported alignment %q", align)
		}
	}
	return s.Apply(func(doc *Document, sel *Selection) error {
		forEachSelectedBlock(doc, *sel, func(block *Block) {
			if block.IsText() {
				block.Align = align
			}
		})
		return nil
	})
}

// ToggleList 选区已全部为同类列表时取消列表，否则转换为该类列表
func (s *Session) ToggleList(kind ListKind) error {
	if kind != ListBullet && kind != ListNumber {
		return fmt.Errorf("unsupported list kind %q", kind)
	}
	return s.Apply(func(doc *Document, sel *Selection) error {
		already := true
		forEachSelectedBlock(doc, *sel, func(block *Block) {
			if block.IsText() && (block.Type != BlockListItem || block.List != kind) {
				already = false
			}
		})
		forEachSelectedBlock(doc, *sel, func(block *Block) {
			if !block.IsText() {
				return
			}
			if already {
				block.Type, block.List = BlockParagraph, ListNone
				return
			}
			block.Type, block.List = BlockListItem, kind
		})
		return nil
	})
}

// RemoveList 将选区中的列表项恢复为段落
func (s *Session) RemoveList() error {
	return s.Apply(func(doc *Document, sel *Selection) error {
		forEachSelectedBlock(doc, *sel, func(block *Block) {
			if block.Type == BlockListItem {
				block.Type, block.List = BlockParagraph, ListNone
			}
		})
		return nil
	})
}

// SetColor 设置文字颜色
func (s *Session) SetColor(value string) error {
	color := NormalizeColor(value, DefaultTextColor)
	return s.patchStyle(func(style *Style) { style.Color = color })
}

// SetBackgroundColor 设置文字背景色
func (s *Session) SetBackgroundColor(value string) error {
	color := NormalizeColor(value, DefaultBackgroundColor)
	return s.patchStyle(func(style *Style) { style.Background = color })
}

// AdjustFontSize 以当前字号为基准按步长调整，结果限制在 10 到 72px
func (s *Session) AdjustFontSize(steps int) error {
	current := Snapshot(s.doc, s.sel).FontSize
	size := clampInt(current+steps*FontSizeStep, MinFontSize, MaxFontSize)
	value := strconv.Itoa(size) + "px"
	return s.patchStyle(func(style *Style) { style.FontSize = value })
}

func (s *Session) patchStyle(fn func(style *Style)) error {
	return s.Apply(func(doc *Document, sel *Selection) error {
		if sel.Collapsed() {
			return nil
		}
		mapSelectedRuns(doc, *sel, func(run *Run) { fn(&run.Style) })
		return nil
	})
}

// ClearFormatting 清除选中文本的格式与样式，并把块恢复为普通段落；链接保留
func (s *Session) ClearFormatting() error {
	return s.Apply(func(doc *Document, sel *Selection) error {
		if !sel.Collapsed() {
			mapSelectedRuns(doc, *sel, func(run *Run) {
				run.Format = 0
				run.Style = Style{}
			})
		}
		forEachSelectedBlock(doc, *sel, func(block *Block) {
			if block.IsText() {
				block.Type, block.List = BlockParagraph, ListNone
			}
		})
		return nil
	})
}

// InsertText 在光标处插入文本，范围选区会先被删除
func (s *Session) InsertText(text string) error {
	if text == "" {
		return nil
	}
	return s.Apply(func(doc *Document, sel *Selection) error {
		at := deleteRange(doc, *sel)
		end := insertText(doc, at, text)
		*sel = Selection{Anchor: end, Focus: end}
		return nil
	})
}

// DeleteSelection 删除选中内容
func (s *Session) DeleteSelection() error {
	return s.Apply(func(doc *Document, sel *Selection) error {
		if sel.Collapsed() {
			return nil
		}
		at := deleteRange(doc, *sel)
		*sel = Selection{Anchor: at, Focus: at}
		return nil
	})
}

// InsertTable 询问 "行x列" 后在光标所在块之后插入空表格；取消或空输入为空操作
func (s *Session) InsertTable(p Prompter) error {
	if s.preview {
		return ErrReadOnly
	}
	input, ok := p.Prompt("Table size (rows x columns)", defaultTable)
	if !ok || strings.TrimSpace(input) == "" {
		return nil
	}
	rows, cols, err := ParseTableSize(input)
	if err != nil {
		return err
	}
	cells := make([][]string, rows)
	for i := range cells {
		cells[i] = make([]string, cols)
	}
	return s.insertBlock(Block{Type: BlockTable, Cells: cells})
}

// InsertImage 询问图片地址后插入图片块
func (s *Session) InsertImage(p Prompter) error {
	if s.preview {
		return ErrReadOnly
	}
	input, ok := p.Prompt("Image URL", defaultURL)
	if !ok || strings.TrimSpace(input) == "" {
		return nil
	}
	src := SafeURL(input)
	if src == "" {
		return ErrUnsafeURL
	}
	alt, _ := p.Prompt("Alternative text", "")
	return s.insertBlock(Block{Type: BlockImage, Src: src, Alt: strings.TrimSpace(alt)})
}

// InsertSpecialChar 询问字符后在光标处插入
func (s *Session) InsertSpecialChar(p Prompter) error {
	if s.preview {
		return ErrReadOnly
	}
	input, ok := p.Prompt("Special character", "")
	if !ok || strings.TrimSpace(input) == "" {
		return nil
	}
	return s.InsertText(input)
}

// ToggleLink 询问链接地址：取消为空操作，空值移除链接，其余值设置到选中文本
func (s *Session) ToggleLink(p Prompter) error {
	if s.preview {
		return ErrReadOnly
	}
	current := Snapshot(s.doc, s.sel).Link
	if current == "" {
		current = defaultURL
	}
	input, ok := p.Prompt("Link URL (leave empty to remove)", current)
	if !ok {
		return nil
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return s.Apply(func(doc *Document, sel *Selection) error {
			removeLink(doc, *sel)
			return nil
		})
	}
	href := SafeURL(input)
	if href == "" {
		return ErrUnsafeURL
	}
	return s.Apply(func(doc *Document, sel *Selection) error {
		if sel.Collapsed() {
			return nil
		}
		mapSelectedRuns(doc, *sel, func(run *Run) { run.Link = href })
		return nil
	})
}

// ParseTableSize 解析 "3x4" / "3 x 4" / "3*4" 形式的表格尺寸
func ParseTableSize(input string) (int, int, error) {
	normalized := strings.NewReplacer("×", "x", "X", "x", "*", "x", ",", "x").Replace(strings.TrimSpace(input))
	left, right, ok := strings.Cut(normalized, "x")
	if !ok {
		return 0, 0, ErrInvalidTableSize
	}
	rows, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, ErrInvalidTableSize
	}
	cols, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return 0, 0, ErrInvalidTableSize
	}
	if rows < 1 || cols < 1 || rows > maxTableSpan || cols > maxTableSpan {
		return 0, 0, ErrInvalidTableSize
	}
	return rows, cols, nil
}

// insertBlock 在光标块之后插入；光标块为空段落时直接替换，光标移到插入块之后
func (s *Session) insertBlock(block Block) error {
	return s.Apply(func(doc *Document, sel *Selection) error {
		at := sel.Focus.Block
		current := doc.Blocks[at]
		blocks := make([]Block, 0, len(doc.Blocks)+2)
		blocks = append(blocks, doc.Blocks[:at]...)
		if current.Type == BlockParagraph && current.Len() == 0 {
			blocks = append(blocks, block)
		} else {
			blocks = append(blocks, current, block)
		}
		inserted := len(blocks) - 1
		blocks = append(blocks, doc.Blocks[at+1:]...)
		if inserted == len(blocks)-1 {
			blocks = append(blocks, Block{Type: BlockParagraph})
		}
		doc.Blocks = blocks
		*sel = Caret(inserted+1, 0)
		return nil
	})
}

func forEachSelectedBlock(doc *Document, sel Selection, fn func(block *Block)) {
	start, end := sel.Ordered()
	for bi := start.Block; bi <= end.Block && bi < len(doc.Blocks); bi++ {
		fn(&doc.Blocks[bi])
	}
}

// mapSelectedRuns 在选区边界切分文本段，对完全落在选区内的段执行 fn；代码块跳过
func mapSelectedRuns(doc *Document, sel Selection, fn func(run *Run)) {
	start, end := sel.Ordered()
	for bi := start.Block; bi <= end.Block && bi < len(doc.Blocks); bi++ {
		block := &doc.Blocks[bi]
		if !block.IsText() || block.Type == BlockCode {
			continue
		}
		from, to := 0, block.Len()
		if bi == start.Block {
			from = start.Offset
		}
		if bi == end.Block {
			to = end.Offset
		}
		if from >= to {
			continue
		}
		runs, _ := splitRuns(block.Runs, to)
		runs, first := splitRuns(runs, from)
		pos := from
		for i := first; i < len(runs) && pos < to; i++ {
			pos += utf8.RuneCountInString(runs[i].Text)
			fn(&runs[i])
		}
		block.Runs = runs
	}
}

// deleteRange 删除选区内容并返回删除后的光标位置
func deleteRange(doc *Document, sel Selection) Point {
	start, end := sel.Ordered()
	if start == end {
		return start
	}
	first := doc.Blocks[start.Block]
	last := doc.Blocks[end.Block]
	if start.Block == end.Block {
		if first.IsText() {
			doc.Blocks[start.Block].Runs = cutRuns(first.Runs, start.Offset, end.Offset)
		}
		return start
	}

	var merged Block
	caret := Point{Block: start.Block}
	switch {
	case first.IsText():
		merged = first.clone()
		merged.Runs = sliceRuns(first.Runs, 0, start.Offset)
		if last.IsText() {
			merged.Runs = append(merged.Runs, sliceRuns(last.Runs, end.Offset, last.Len())...)
		}
		caret.Offset = start.Offset
	case last.IsText():
		merged = last.clone()
		merged.Runs = sliceRuns(last.Runs, end.Offset, last.Len())
	default:
		merged = Block{Type: BlockParagraph}
	}
	blocks := make([]Block, 0, len(doc.Blocks))
	blocks = append(blocks, doc.Blocks[:start.Block]...)
	blocks = append(blocks, merged)
	blocks = append(blocks, doc.Blocks[end.Block+1:]...)
	doc.Blocks = blocks
	return caret
}

// insertText 在指定位置插入文本，沿用光标处文本段的格式
func insertText(doc *Document, at Point, text string) Point {
	block := &doc.Blocks[at.Block]
	if !block.IsText() {
		paragraph := Block{Type: BlockParagraph, Runs: []Run{{Text: text}}}
		blocks := make([]Block, 0, len(doc.Blocks)+1)
		blocks = append(blocks, doc.Blocks[:at.Block+1]...)
		blocks = append(blocks, paragraph)
		blocks = append(blocks, doc.Blocks[at.Block+1:]...)
		doc.Blocks = blocks
		return Point{Block: at.Block + 1, Offset: utf8.RuneCountInString(text)}
	}
	attrs, _ := runAt(*block, at.Offset)
	if block.Type == BlockCode {
		attrs = Run{}
	}
	attrs.Text = text
	runs, idx := splitRuns(block.Runs, at.Offset)
	out := make([]Run, 0, len(runs)+1)
	out = append(out, runs[:idx]...)
	out = append(out, attrs)
	out = append(out, runs[idx:]...)
	block.Runs = out
	return Point{Block: at.Block, Offset: at.Offset + utf8.RuneCountInString(text)}
}

// removeLink 光标状态下移除光标所在的整段链接
func removeLink(doc *Document, sel Selection) {
	if !sel.Collapsed() {
		mapSelectedRuns(doc, sel, func(run *Run) { run.Link = "" })
		return
	}
	block := &doc.Blocks[sel.Focus.Block]
	idx := runIndexAt(*block, sel.Focus.Offset)
	if idx < 0 || block.Runs[idx].Link == "" {
		return
	}
	link := block.Runs[idx].Link
	for i := idx; i >= 0 && block.Runs[i].Link == link; i-- {
		block.Runs[i].Link = ""
	}
	for i := idx + 1; i < len(block.Runs) && block.Runs[i].Link == link; i++ {
		block.Runs[i].Link = ""
	}
}
