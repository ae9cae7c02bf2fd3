package rcon

// Reply is implemented by every decodable reply shape.  Embedding
// [Header] in a reply struct provides the implementation; the
// unexported method keeps the correlation contract inside this
// package.
type Reply interface {
	// CommandName is the command the server says it is replying to.
	CommandName() string
	// OK mirrors the reply's own success flag.
	OK() bool

	attachRaw(raw string)
}

// ReplyPtr constrains a pointer to a concrete reply shape.
type ReplyPtr[T any] interface {
	*T
	Reply
}

// Header carries the fields every server reply includes, plus the raw
// text the reply was decoded from.  Reply shapes embed it and add
// their command-specific fields.
type Header struct {
	Command    string `json:"Command"`
	Successful bool   `json:"Successful"`
	Raw        string `json:"-"`
}

func (h *Header) CommandName() string { return h.Command }

func (h *Header) OK() bool { return h.Successful }

func (h *Header) attachRaw(raw string) { h.Raw = raw }
