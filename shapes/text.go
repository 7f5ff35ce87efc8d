package shapes

import "github.com/scenewire/scenewire/wire"

// TextCreate is the Text2D/Text3D Create tail: text_length u16 + UTF-8
// bytes, no terminator (spec.md §4.5). Use kind=Text2D or kind=Text3D.
type TextCreate struct {
	Header CreateHeader
	Attrs  Attributes
	Text   string
}

// Write emits a Text2D or Text3D Create message.
func (c TextCreate) Write(w *wire.Writer, kind Kind) bool {
	w.Reset(kind, MsgCreate)
	if !WriteCreateHeader(w, c.Header) || !c.Attrs.Write(w, c.Header.Flags&FlagDoublePrecision != 0) {
		return false
	}
	return w.WriteString(c.Text)
}

// ReadTextCreate reads a Text2D/Text3D Create message body.
func ReadTextCreate(r *wire.Reader) (TextCreate, error) {
	var c TextCreate
	h, err := ReadCreateHeader(r)
	if err != nil {
		return c, err
	}
	attrs, ok := ReadAttributes(r, h.Flags&FlagDoublePrecision != 0)
	if !ok {
		return c, wire.ErrTruncated
	}
	text, ok := r.ReadString()
	if !ok {
		return c, wire.ErrTruncated
	}
	c.Header, c.Attrs, c.Text = h, attrs, text
	return c, nil
}
