package dsl

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Document is the root AST node for a platen DSL file.
//
//	doc Name Version { meta {...} resources {...} overlay {...} page ... {...} }
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'doc' @Ident"`
	Version  string         `parser:"@Ident"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section is one of the top-level sections; only one field is set.
type Section struct {
	Meta      *Block            `parser:"  'meta' @@"`
	Resources *ResourcesSection `parser:"| @@"`
	Overlay   *OverlaySection   `parser:"| @@"`
	Page      *PageSection      `parser:"| @@"`
}

// Kind returns the section keyword.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Resources != nil:
		return "resources"
	case s.Overlay != nil:
		return "overlay"
	case s.Page != nil:
		return "page"
	default:
		return "unknown"
	}
}

// ResourcesSection 声明颜色、样式与图片。
type ResourcesSection struct {
	Decls []*Resource `parser:"'resources' '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Resource is a single resource declaration.
type Resource struct {
	Color *ColorDecl `parser:"  @@"`
	Style *StyleDecl `parser:"| @@"`
	Image *ImageDecl `parser:"| @@"`
}

// ColorDecl names a color: `color Brand #0b3d91` or `color Brand = #0b3d91`.
type ColorDecl struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"'color' @Ident '='?"`
	Value string         `parser:"@Color"`
}

// StyleDecl is `style Name [extends Parent] { key: value ... }`.
type StyleDecl struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"'style' @Ident"`
	Extends string         `parser:"( 'extends' @Ident )?"`
	Body    *Block         `parser:"@@"`
}

// ImageDecl registers a named image: `image logo "logo.png" width 2in`
// or `image logo { src: "logo.png"; width: 2in }`.
type ImageDecl struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Name   string         `parser:"'image' @Ident"`
	Src    StringLiteral  `parser:"@String?"`
	Params []*Lexeme      `parser:"@@*"`
	Body   *Block         `parser:"@@?"`
}

// OverlaySection lists the decorations drawn on every page.
type OverlaySection struct {
	Items []*Decoration `parser:"'overlay' '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Decoration is a watermark or a page border.
type Decoration struct {
	Watermark *Watermark `parser:"  @@"`
	Border    *Border    `parser:"| @@"`
}

// Watermark is `watermark "TEXT" [size 60pt] [angle 45] [opacity 0.2] [color X] [font mono]`.
type Watermark struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Text   StringLiteral  `parser:"'watermark' @String"`
	Params []*Lexeme      `parser:"@@*"`
	Body   *Block         `parser:"@@?"`
}

// Border is `border [inset 18pt] [width 1pt] [color X]`.
type Border struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Params []*Lexeme      `parser:"'border' @@*"`
	Body   *Block         `parser:"@@?"`
}

// PageSection holds the page geometry and the flow of content blocks.
// Every page section after the first starts on a new page.
type PageSection struct {
	Spec  PageSpec `parser:"'page' @@"`
	Block *Block   `parser:"@@"`
}

// PageSpec stores header tokens (eg: size, orientation, margin, spacing).
// The size "default" defers to the configured page preset.
type PageSpec struct {
	Size   string    `parser:"@Ident"`
	Params []*Lexeme `parser:"@@*"`
}

// Block is a delimited list of statements.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement inside a block; only one field is set.
type Statement struct {
	Assignment *Assignment  `parser:"  @@"`
	Table      *Table       `parser:"| @@"`
	Command    *Command     `parser:"| @@"`
	Text       *TextLiteral `parser:"| @@"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Key   string `parser:"@Ident"`
	Value *Value `parser:"':' Newline* @@"`
}

// Command describes a content block such as paragraph, bullet, box or image.
// The opening brace of a command body must be on the same line as the command.
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Lexeme      `parser:"@@*"`
	Block *Block         `parser:"@@?"`
}

// Table is `table [key value ...] { columns: [...]; header {...}; row [each path] {...} }`.
type Table struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Params []*Lexeme      `parser:"'table' @@*"`
	Items  []*TableItem   `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// TableItem is a table property, the header row or a body row.
type TableItem struct {
	Assignment *Assignment `parser:"  @@"`
	Header     *TableRow   `parser:"| 'header' @@"`
	Row        *TableRow   `parser:"| 'row' @@"`
}

// TableRow lists the cells of one row. Each is a data path such as
// `products` or `report.items`; the row repeats once per array element.
type TableRow struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Each   string         `parser:"( 'each' @Ident ( @'.' @Ident | @'[' @Number @']' )* )?"`
	Params []*Lexeme      `parser:"@@*"`
	Cells  []*Cell        `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Cell is `cell [Style] "text" [key value ...]`.
type Cell struct {
	Pos  lexer.Position `parser:"" json:"-"`
	Args []*Lexeme      `parser:"'cell' @@*"`
	Body *Block         `parser:"@@?"`
}

// TextLiteral encapsulates raw string statements within blocks.
type TextLiteral struct {
	Value StringLiteral `parser:"@String"`
}

// Value represents generic property values.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Array  *ArrayValue    `parser:"| @@"`
	Expr   *Expression    `parser:"| @@"`
}

// ArrayValue captures `[ ... ]` lists separated by commas, semicolons or newlines.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | ';' | Newline+) Newline* @@ )* )? Newline* ']'"`
}
