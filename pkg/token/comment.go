package token

// CommentKind distinguishes line from block comments.
type CommentKind int

// Comment kinds.
const (
	LineComment  CommentKind = iota // -- to end of line
	BlockComment                    // /* ... */
)

// Comment is one SQL comment. Text keeps the delimiters so the original
// source can be reconstructed from spans.
type Comment struct {
	Kind CommentKind
	Text string
	Span Span
}

// Body returns the comment text without its delimiters.
func (c *Comment) Body() string {
	switch c.Kind {
	case LineComment:
		return c.Text[2:]
	case BlockComment:
		if len(c.Text) >= 4 {
			return c.Text[2 : len(c.Text)-2]
		}
	}
	return c.Text
}
