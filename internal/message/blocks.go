// Package message models outbound chat payloads as a small closed set of
// block variants. Transport adapters translate these into the platform's
// native layout format; nothing in here knows about any particular chat
// platform.
package message

// BlockType tags the variant a Block holds.
type BlockType string

const (
	BlockHeader  BlockType = "header"
	BlockSection BlockType = "section"
	BlockContext BlockType = "context"
	BlockActions BlockType = "actions"
	BlockDivider BlockType = "divider"
)

// Button is an element of an actions block.
type Button struct {
	Text     string
	URL      string
	ActionID string
}

// Block is one unit of a displayable payload. Which fields are meaningful
// depends on Type: headers carry plain Text, sections carry markdown Text,
// context blocks carry Elements, actions blocks carry Buttons, and dividers
// carry nothing.
type Block struct {
	Type     BlockType
	Text     string
	BlockID  string
	Elements []string
	Buttons  []Button
}

// Builder assembles a sequence of blocks.
type Builder struct {
	blocks []Block
}

func NewBuilder() *Builder {
	return &Builder{}
}

func (b *Builder) Header(text, blockID string) *Builder {
	b.blocks = append(b.blocks, Block{Type: BlockHeader, Text: text, BlockID: blockID})
	return b
}

func (b *Builder) Section(markdown string) *Builder {
	b.blocks = append(b.blocks, Block{Type: BlockSection, Text: markdown})
	return b
}

func (b *Builder) Context(elements ...string) *Builder {
	b.blocks = append(b.blocks, Block{Type: BlockContext, Elements: elements})
	return b
}

func (b *Builder) Actions(blockID string, buttons ...Button) *Builder {
	b.blocks = append(b.blocks, Block{Type: BlockActions, BlockID: blockID, Buttons: buttons})
	return b
}

func (b *Builder) Divider() *Builder {
	b.blocks = append(b.blocks, Block{Type: BlockDivider})
	return b
}

func (b *Builder) Blocks() []Block {
	return b.blocks
}

// FromText wraps a plain sentence in a single section block, for callers
// that have text rather than a prebuilt layout.
func FromText(text string) []Block {
	return NewBuilder().Section(text).Blocks()
}
