// Package dsl 定义文档描述语言的语法树与解析器。
//
// 语法节点见 grammar.go；本文件只包含词法规则、两个自定义语法原子（Lexeme、Expression）
// 以及对外的 Parse 入口。
package dsl

import (
	"fmt"
	"io"
	"strconv"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "Comment", Pattern: `//[^\n]*|/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		// 颜色必须先于 # 注释匹配。
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|%|x)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=+\-*/%<>!?;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	tokenTypes = dslLexer.Symbols()
	typeNames  = func() map[lexer.TokenType]string {
		out := make(map[lexer.TokenType]string, len(tokenTypes))
		for name, tt := range tokenTypes {
			out[tt] = name
		}
		return out
	}()

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "Comment", "HashComment"),
	)
)

// Parse parses DSL content from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses DSL content from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}

// Lexeme 是命令参数中的单个词法单元。字符串在捕获时去掉引号，Raw 保留原文。
type Lexeme struct {
	Type  string         `json:"type"`
	Value string         `json:"value"`
	Raw   string         `json:"raw"`
	Pos   lexer.Position `json:"-"`
}

// Parse implements participle.Parseable：参数在换行、分号或花括号处结束。
func (l *Lexeme) Parse(lex *lexer.PeekingLexer) error {
	if boundary(lex.Peek(), 0, false) {
		return participle.NextMatch
	}
	next, err := take(lex)
	if err != nil {
		return err
	}
	*l = next
	return nil
}

// Expression 保存赋值右侧无法归类为字面量的原始词法单元，例如 `weight: bold`。
type Expression struct {
	Parts []*Lexeme
}

// Parse implements participle.Parseable。括号内的换行、分号与逗号不结束表达式。
func (e *Expression) Parse(lex *lexer.PeekingLexer) error {
	depth := 0
	for !boundary(lex.Peek(), depth, true) {
		part, err := take(lex)
		if err != nil {
			return err
		}
		switch part.Raw {
		case "(", "[":
			depth++
		case ")", "]":
			if depth > 0 {
				depth--
			}
		}
		e.Parts = append(e.Parts, &part)
	}
	if len(e.Parts) == 0 {
		return participle.NextMatch
	}
	return nil
}

// boundary 判断 tok 是否结束一个参数列表（expr 为 false）或表达式（expr 为 true）。
// depth 是表达式内尚未闭合的括号数。
func boundary(tok *lexer.Token, depth int, expr bool) bool {
	if tok == nil || tok.EOF() {
		return true
	}
	if tok.Type == tokenTypes["Symbol"] && tok.Value == "]" {
		return expr && depth == 0
	}
	if depth > 0 {
		return false
	}
	switch tok.Type {
	case tokenTypes["Newline"], tokenTypes["LBrace"], tokenTypes["RBrace"]:
		return true
	case tokenTypes["Symbol"]:
		return tok.Value == ";" || (expr && tok.Value == ",")
	}
	return false
}

func take(lex *lexer.PeekingLexer) (Lexeme, error) {
	tok := lex.Next()
	if tok.EOF() {
		return Lexeme{}, participle.NextMatch
	}
	name, ok := typeNames[tok.Type]
	if !ok {
		name = fmt.Sprintf("#%d", tok.Type)
	}
	out := Lexeme{Type: name, Value: tok.Value, Raw: tok.Value, Pos: tok.Pos}
	if tok.Type == tokenTypes["String"] {
		v, err := strconv.Unquote(tok.Value)
		if err != nil {
			return Lexeme{}, fmt.Errorf("%s: 无效的字符串 %s: %w", tok.Pos, tok.Value, err)
		}
		out.Value = v
	}
	return out, nil
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("字符串字面量缺少取值")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}
