// Package styled holds the styled node tree consumed by the layout engine.
//
// A tree is produced upstream (HTML parsing plus CSS cascade) with every
// display value and box spacing already resolved. Nothing in this package
// cascades or inherits styles.
package styled

import "strings"

// Kind identifies what a node is. Known kinds are listed below; any other
// string is an unknown kind and is classified as block by the layout engine.
type Kind string

const (
	KindDocument   Kind = "document"
	KindDiv        Kind = "div"
	KindSection    Kind = "section"
	KindArticle    Kind = "article"
	KindHeader     Kind = "header"
	KindFooter     Kind = "footer"
	KindNav        Kind = "nav"
	KindParagraph  Kind = "p"
	KindH1         Kind = "h1"
	KindH2         Kind = "h2"
	KindH3         Kind = "h3"
	KindH4         Kind = "h4"
	KindH5         Kind = "h5"
	KindH6         Kind = "h6"
	KindBlockquote Kind = "blockquote"
	KindPre        Kind = "pre"
	KindList       Kind = "ul"
	KindOrdered    Kind = "ol"
	KindListItem   Kind = "li"
	KindTable      Kind = "table"
	KindTableHead  Kind = "thead"
	KindTableBody  Kind = "tbody"
	KindTableFoot  Kind = "tfoot"
	KindTableRow   Kind = "tr"
	KindTableCell  Kind = "td"
	KindTableHCell Kind = "th"
	KindSpan       Kind = "span"
	KindBold       Kind = "b"
	KindStrong     Kind = "strong"
	KindItalic     Kind = "i"
	KindEmphasis   Kind = "em"
	KindCode       Kind = "code"
	KindAnchor     Kind = "a"
	KindText       Kind = "#text"
	KindLineBreak  Kind = "br"
)

// Category groups kinds by their semantic role.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryStructural
	CategoryTextLevel
	CategoryTableStructure
)

var kindCategories = map[Kind]Category{
	KindDocument:   CategoryStructural,
	KindDiv:        CategoryStructural,
	KindSection:    CategoryStructural,
	KindArticle:    CategoryStructural,
	KindHeader:     CategoryStructural,
	KindFooter:     CategoryStructural,
	KindNav:        CategoryStructural,
	KindParagraph:  CategoryStructural,
	KindH1:         CategoryStructural,
	KindH2:         CategoryStructural,
	KindH3:         CategoryStructural,
	KindH4:         CategoryStructural,
	KindH5:         CategoryStructural,
	KindH6:         CategoryStructural,
	KindBlockquote: CategoryStructural,
	KindPre:        CategoryStructural,
	KindList:       CategoryStructural,
	KindOrdered:    CategoryStructural,
	KindListItem:   CategoryStructural,
	KindTable:      CategoryStructural,
	KindTableHead:  CategoryTableStructure,
	KindTableBody:  CategoryTableStructure,
	KindTableFoot:  CategoryTableStructure,
	KindTableRow:   CategoryTableStructure,
	KindTableCell:  CategoryTableStructure,
	KindTableHCell: CategoryTableStructure,
	KindSpan:       CategoryTextLevel,
	KindBold:       CategoryTextLevel,
	KindStrong:     CategoryTextLevel,
	KindItalic:     CategoryTextLevel,
	KindEmphasis:   CategoryTextLevel,
	KindCode:       CategoryTextLevel,
	KindAnchor:     CategoryTextLevel,
	KindText:       CategoryTextLevel,
	KindLineBreak:  CategoryTextLevel,
}

// Category returns the semantic category of the kind, CategoryUnknown for
// kinds outside the known set.
func (k Kind) Category() Category {
	return kindCategories[k]
}

// Known reports whether the kind belongs to the known enumeration.
func (k Kind) Known() bool {
	return k.Category() != CategoryUnknown
}

// IsTableStructure reports whether the kind is a table section, row or cell.
func (k Kind) IsTableStructure() bool {
	return k.Category() == CategoryTableStructure
}

// IsTableRowGroup reports whether the kind groups table rows.
func (k Kind) IsTableRowGroup() bool {
	return k == KindTableHead || k == KindTableBody || k == KindTableFoot
}

// IsTableCell reports whether the kind is a data or header cell.
func (k Kind) IsTableCell() bool {
	return k == KindTableCell || k == KindTableHCell
}

// Node is a single node of the styled tree.
type Node struct {
	Kind     Kind
	Style    Style
	Text     string // text content, only meaningful for KindText
	Children []*Node
}

// NewNode creates a node of the given kind with default style.
func NewNode(kind Kind, children ...*Node) *Node {
	return &Node{Kind: kind, Style: DefaultStyle(), Children: children}
}

// NewText creates a text leaf.
func NewText(text string) *Node {
	return &Node{Kind: KindText, Style: DefaultStyle(), Text: text}
}

// WithStyle returns the node after replacing its style. It is meant for
// building trees in tests and tools, before the tree is handed to layout.
func (n *Node) WithStyle(style Style) *Node {
	n.Style = style
	return n
}

// TextContent concatenates text of all descendant text nodes.
func (n *Node) TextContent() string {
	var sb strings.Builder
	n.collectText(&sb)
	return sb.String()
}

func (n *Node) collectText(sb *strings.Builder) {
	if n.Kind == KindText {
		sb.WriteString(n.Text)
	}
	for _, child := range n.Children {
		child.collectText(sb)
	}
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	count := 1
	for _, child := range n.Children {
		count += child.Count()
	}
	return count
}
