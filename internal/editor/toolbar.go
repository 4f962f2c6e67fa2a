package editor

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultFontSize 默认字号（px）
const DefaultFontSize = 16

// Point 文档中的位置：块下标与块内 rune 偏移
type Point struct {
	Block  int
	Offset int
}

func (p Point) before(other Point) bool {
	if p.Block != other.Block {
		return p.Block < other.Block
	}
	return p.Offset < other.Offset
}

// Selection 选区，Anchor 为起点，Focus 为光标端
type Selection struct {
	Anchor Point
	Focus  Point
}

// Caret 折叠选区
func Caret(block, offset int) Selection {
	p := Point{Block: block, Offset: offset}
	return Selection{Anchor: p, Focus: p}
}

// Range 范围选区
func Range(fromBlock, fromOffset, toBlock, toOffset int) Selection {
	return Selection{
		Anchor: Point{Block: fromBlock, Offset: fromOffset},
		Focus:  Point{Block: toBlock, Offset: toOffset},
	}
}

// Collapsed 是否为光标
func (s Selection) Collapsed() bool {
	return s.Anchor == s.Focus
}

// Ordered 返回按文档顺序排列的起止点
func (s Selection) Ordered() (Point, Point) {
	if s.Focus.before(s.Anchor) {
		return s.Focus, s.Anchor
	}
	return s.Anchor, s.Focus
}

// clampSelection 将选区限制在文档范围内
func clampSelection(doc Document, sel Selection) Selection {
	return Selection{Anchor: clampPoint(doc, sel.Anchor), Focus: clampPoint(doc, sel.Focus)}
}

func clampPoint(doc Document, p Point) Point {
	if len(doc.Blocks) == 0 {
		return Point{}
	}
	if p.Block < 0 {
		return Point{}
	}
	if p.Block >= len(doc.Blocks) {
		last := len(doc.Blocks) - 1
		return Point{Block: last, Offset: doc.Blocks[last].Len()}
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if n := doc.Blocks[p.Block].Len(); p.Offset > n {
		p.Offset = n
	}
	return p
}

// ToolbarState 工具栏状态快照
type ToolbarState struct {
	Formats         Format
	BlockType       BlockType
	ListKind        ListKind
	Alignment       Alignment
	Color           string
	BackgroundColor string
	FontSize        int
	Link            string
}

// Active 格式是否处于激活状态
func (t ToolbarState) Active(flag Format) bool {
	return t.Formats.Has(flag)
}

// Snapshot 计算选区的工具栏状态：范围选区中格式需全部字符都具备才算激活
func Snapshot(doc Document, sel Selection) ToolbarState {
	sel = clampSelection(doc, sel)
	anchor := doc.Blocks[sel.Anchor.Block]
	state := ToolbarState{
		BlockType:       anchor.Type,
		ListKind:        anchor.List,
		Alignment:       anchor.Align,
		Color:           DefaultTextColor,
		BackgroundColor: DefaultBackgroundColor,
		FontSize:        DefaultFontSize,
	}

	var lead Run
	if sel.Collapsed() {
		run, ok := runAt(anchor, sel.Anchor.Offset)
		if !ok {
			return state
		}
		state.Formats = run.Format
		lead = run
	} else {
		first := true
		forEachSelectedRun(doc, sel, func(_ int, run Run) {
			if first {
				state.Formats = run.Format
				lead = run
				first = false
				return
			}
			state.Formats &= run.Format
		})
		if first {
			return state
		}
	}
	state.Color = NormalizeColor(lead.Style.Color, DefaultTextColor)
	state.BackgroundColor = NormalizeColor(lead.Style.Background, DefaultBackgroundColor)
	state.FontSize = parseFontSize(lead.Style.FontSize)
	state.Link = lead.Link
	return state
}

// forEachSelectedRun 遍历与选区有交集的文本段（不切分）
func forEachSelectedRun(doc Document, sel Selection, fn func(block int, run Run)) {
	start, end := sel.Ordered()
	for bi := start.Block; bi <= end.Block && bi < len(doc.Blocks); bi++ {
		block := doc.Blocks[bi]
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
		pos := 0
		for _, run := range block.Runs {
			n := utf8.RuneCountInString(run.Text)
			if pos < to && pos+n > from {
				fn(bi, run)
			}
			pos += n
		}
	}
}

func parseFontSize(raw string) int {
	v := strings.ToLower(strings.TrimSpace(raw))
	if !strings.HasSuffix(v, "px") {
		return DefaultFontSize
	}
	size, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v, "px")), 64)
	if err != nil || size <= 0 {
		return DefaultFontSize
	}
	return int(size + 0.5)
}
