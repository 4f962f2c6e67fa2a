package editor

import "errors"

const maxHistory = 100

var (
	ErrReadOnly           = errors.New("editor is read-only")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrUnsupportedBlock   = errors.New("unsupported block type")
	ErrInvalidTableSize   = errors.New("invalid table size")
	ErrUnsafeURL          = errors.New("unsafe url")
	ErrRawEditorNotActive = errors.New("raw html editor is not open")
)

// Mutation 在文档副本上执行的修改
type Mutation func(doc *Document, sel *Selection) error

type historyEntry struct {
	doc Document
	sel Selection
}

// Session 编辑会话，维护文档、选区、撤销历史与外部值同步。
// 会话不是并发安全的，调用方需在同一个 goroutine 中使用。
type Session struct {
	doc        Document
	sel        Selection
	lastSynced string
	onChange   func(html string)

	undo []historyEntry
	redo []historyEntry

	preview    bool
	fullscreen bool
	rawOpen    bool
}

// NewSession 以初始 HTML 创建会话；onChange 在序列化结果变化时被调用
func NewSession(initialHTML string, onChange func(html string)) *Session {
	return &Session{
		doc:        ParseHTML(initialHTML),
		lastSynced: initialHTML,
		onChange:   onChange,
	}
}

// Document 当前文档副本
func (s *Session) Document() Document {
	return s.doc.Clone()
}

// HTML 当前文档的序列化结果
func (s *Session) HTML() string {
	return s.doc.HTML()
}

// LastSynced 最近一次与外部同步的值
func (s *Session) LastSynced() string {
	return s.lastSynced
}

// Selection 当前选区
func (s *Session) Selection() Selection {
	return s.sel
}

// Select 设置选区（越界时收敛到文档范围内）
func (s *Session) Select(sel Selection) {
	s.sel = clampSelection(s.doc, sel)
}

// Toolbar 当前工具栏状态
func (s *Session) Toolbar() ToolbarState {
	return Snapshot(s.doc, s.sel)
}

// SetValue 接收外部值；与最近同步值相同时忽略，返回是否替换了文档。
// 替换后选区回到文档开头，撤销历史清空，且不会触发 onChange。
func (s *Session) SetValue(value string) bool {
	if value == s.lastSynced {
		return false
	}
	s.doc = ParseHTML(value)
	s.sel = Selection{}
	s.lastSynced = value
	s.undo = nil
	s.redo = nil
	return true
}

// SetPreview 切换只读预览
func (s *Session) SetPreview(on bool) {
	s.preview = on
}

// Preview 是否处于只读预览
func (s *Session) Preview() bool {
	return s.preview
}

// SetFullscreen 切换全屏，不影响文档
func (s *Session) SetFullscreen(on bool) {
	s.fullscreen = on
}

// Fullscreen 是否全屏
func (s *Session) Fullscreen() bool {
	return s.fullscreen
}

// Apply 在文档副本上执行修改；序列化结果不变时不产生撤销记录
func (s *Session) Apply(m Mutation) error {
	if s.preview {
		return ErrReadOnly
	}
	doc := s.doc.Clone()
	sel := s.sel
	if err := m(&doc, &sel); err != nil {
		return err
	}
	doc.normalize()
	sel = clampSelection(doc, sel)

	next := doc.HTML()
	if next == s.doc.HTML() {
		s.sel = sel
		return nil
	}
	s.pushUndo()
	s.redo = nil
	s.doc = doc
	s.sel = sel
	s.emit(next)
	return nil
}

func (s *Session) pushUndo() {
	s.undo = append(s.undo, historyEntry{doc: s.doc.Clone(), sel: s.sel})
	if len(s.undo) > maxHistory {
		s.undo = s.undo[len(s.undo)-maxHistory:]
	}
}

func (s *Session) emit(html string) {
	if html == s.lastSynced {
		return
	}
	s.lastSynced = html
	if s.onChange != nil {
		s.onChange(html)
	}
}

// CanUndo 是否可撤销
func (s *Session) CanUndo() bool {
	return len(s.undo) > 0
}

// CanRedo 是否可重做
func (s *Session) CanRedo() bool {
	return len(s.redo) > 0
}

// Undo 撤销一步；无历史时为空操作
func (s *Session) Undo() error {
	if s.preview {
		return ErrReadOnly
	}
	if len(s.undo) == 0 {
		return nil
	}
	last := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, historyEntry{doc: s.doc, sel: s.sel})
	s.doc, s.sel = last.doc, last.sel
	s.emit(s.doc.HTML())
	return nil
}

// Redo 重做一步；无历史时为空操作
func (s *Session) Redo() error {
	if s.preview {
		return ErrReadOnly
	}
	if len(s.redo) == 0 {
		return nil
	}
	next := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, historyEntry{doc: s.doc, sel: s.sel})
	s.doc, s.sel = next.doc, next.sel
	s.emit(s.doc.HTML())
	return nil
}

// OpenRawHTML 打开源码编辑，返回当前序列化结果作为初始内容
func (s *Session) OpenRawHTML() (string, error) {
	if s.preview {
		return "", ErrReadOnly
	}
	s.rawOpen = true
	return s.doc.HTML(), nil
}

// RawHTMLOpen 源码编辑是否打开
func (s *Session) RawHTMLOpen() bool {
	return s.rawOpen
}

// ApplyRawHTML 用源码重建文档（单步撤销），值变化时通知外部
func (s *Session) ApplyRawHTML(raw string) error {
	if !s.rawOpen {
		return ErrRawEditorNotActive
	}
	if s.preview {
		return ErrReadOnly
	}
	doc := ParseHTML(raw)
	next := doc.HTML()
	s.rawOpen = false
	if next == s.doc.HTML() {
		return nil
	}
	s.pushUndo()
	s.redo = nil
	s.doc = doc
	s.sel = Selection{}
	s.emit(next)
	return nil
}

// CancelRawHTML 关闭源码编辑，文档不变
func (s *Session) CancelRawHTML() {
	s.rawOpen = false
}
