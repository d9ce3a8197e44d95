// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package webrender

// ResultKind tags the variant held by a ResultMsg.
type ResultKind uint8

const (
	// ResultUpdateTextureCache carries a texture update list.
	ResultUpdateTextureCache ResultKind = iota + 1
	// ResultRefreshShader asks the consumer to reload a shader.
	ResultRefreshShader
	// ResultNewFrame carries a completed frame.
	ResultNewFrame
)

// String returns the kind name.
func (k ResultKind) String() string {
	switch k {
	case ResultUpdateTextureCache:
		return "UpdateTextureCache"
	case ResultRefreshShader:
		return "RefreshShader"
	case ResultNewFrame:
		return "NewFrame"
	default:
		return "Unknown"
	}
}

// ResultMsg is one message from producer to consumer. Build it with
// [UpdateTextureCache], [RefreshShader] or [NewFrame]; the zero value is
// not a valid message.
type ResultMsg struct {
	kind     ResultKind
	updates  *TextureUpdateList
	path     string
	frame    *RendererFrame
	counters BackendProfileCounters
}

// UpdateTextureCache returns a message carrying list.
func UpdateTextureCache(list *TextureUpdateList) ResultMsg {
	if list == nil {
		list = &TextureUpdateList{}
	}
	return ResultMsg{kind: ResultUpdateTextureCache, updates: list}
}

// RefreshShader returns a message asking the consumer to reload the shader
// at path before its next use.
func RefreshShader(path string) ResultMsg {
	return ResultMsg{kind: ResultRefreshShader, path: path}
}

// NewFrame returns a message carrying a completed frame and the producer's
// counters for it. It panics if frame is nil.
func NewFrame(frame *RendererFrame, counters BackendProfileCounters) ResultMsg {
	if frame == nil {
		panic("webrender: NewFrame with nil frame")
	}
	return ResultMsg{kind: ResultNewFrame, frame: frame, counters: counters}
}

// Kind returns the variant tag.
func (m ResultMsg) Kind() ResultKind { return m.kind }

// Updates returns the update list of an UpdateTextureCache message.
func (m ResultMsg) Updates() (*TextureUpdateList, bool) {
	return m.updates, m.kind == ResultUpdateTextureCache
}

// ShaderPath returns the path of a RefreshShader message.
func (m ResultMsg) ShaderPath() (string, bool) {
	return m.path, m.kind == ResultRefreshShader
}

// Frame returns the frame and counters of a NewFrame message.
func (m ResultMsg) Frame() (*RendererFrame, BackendProfileCounters, bool) {
	return m.frame, m.counters, m.kind == ResultNewFrame
}

// String returns the kind name.
func (m ResultMsg) String() string { return m.kind.String() }
