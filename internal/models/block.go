package models

// BlockKind tags the variant stored in a Block.
type BlockKind string

const (
	BlockParagraph BlockKind = "paragraph"
	BlockHeading   BlockKind = "heading"
	BlockRule      BlockKind = "hr"
	BlockFenced    BlockKind = "block"
	BlockTable     BlockKind = "table"
	BlockList      BlockKind = "list"
	BlockColon     BlockKind = "colon"
	BlockImage     BlockKind = "image"
)

// FenceKind is the type of a #+BEGIN_<kind> ... #+END_<kind> block.
type FenceKind string

const (
	FenceSource  FenceKind = "src"
	FenceExample FenceKind = "example"
	FenceVerse   FenceKind = "verse"
	FenceQuote   FenceKind = "quote"
	FenceCenter  FenceKind = "center"
	FenceHTML    FenceKind = "html"
	FenceASCII   FenceKind = "ascii"
	FenceLatex   FenceKind = "latex"
	FenceExport  FenceKind = "export"
)

// Block is one structured content element of an entry. Only the fields
// belonging to Kind are set; the renderer turns blocks into HTML.
type Block struct {
	Kind BlockKind `yaml:"kind" json:"kind"`

	// Text is the paragraph text or the heading title.
	Text string `yaml:"text,omitempty" json:"text,omitempty"`
	// Level is the heading depth relative to the entry heading (first sub-level is 2).
	Level int `yaml:"level,omitempty" json:"level,omitempty"`

	// Fence is the fenced block type, Args the rest of the opening line
	// (source language, export backend).
	Fence FenceKind `yaml:"fence,omitempty" json:"fence,omitempty"`
	Args  string    `yaml:"args,omitempty" json:"args,omitempty"`
	// Name is the optional #+NAME: attached to a fenced block.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Lines holds raw lines of fenced blocks, tables, lists and colon blocks.
	Lines []string `yaml:"lines,omitempty" json:"lines,omitempty"`

	Image *ImageLink `yaml:"image,omitempty" json:"image,omitempty"`
}

// ImageLink is a standalone custom image link line.
type ImageLink struct {
	Filename    string            `yaml:"filename" json:"filename"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	Caption     string            `yaml:"caption,omitempty" json:"caption,omitempty"`
	Attributes  map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// Paragraph returns a paragraph block.
func Paragraph(text string) Block {
	return Block{Kind: BlockParagraph, Text: text}
}

// Heading returns a sub-heading block at the given relative level.
func Heading(title string, level int) Block {
	return Block{Kind: BlockHeading, Text: title, Level: level}
}

// Rule returns a horizontal rule block.
func Rule() Block {
	return Block{Kind: BlockRule}
}
