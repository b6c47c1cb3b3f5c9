package scan

import (
	"relint/internal/source"
)

// TokenKind discriminates the coarse token classes the analyses need.
// This is deliberately not a language grammar: strings and comments were
// already removed by the classifier, so only code zones are tokenized.
type TokenKind uint8

const (
	TokIdent TokenKind = iota
	TokNumber
	TokPunct
	TokString // a whole string-literal zone, surfaced as one opaque token
)

// Token is a lexical unit inside a code zone.
type Token struct {
	Kind TokenKind
	Span source.Span
	Text string
}

// multi-byte punctuators, longest first per leading byte
var punctTable = map[byte][]string{
	'=': {"===", "=>", "==", "="},
	'!': {"!==", "!=", "!"},
	'<': {"<<=", "<=", "<<", "<"},
	'>': {">>>=", ">>>", ">>=", ">=", ">>", ">"},
	'&': {"&&=", "&&", "&=", "&"},
	'|': {"||=", "||", "|=", "|"},
	'?': {"??=", "??", "?.", "?"},
	'+': {"++", "+=", "+"},
	'-': {"--", "-=", "-"},
	'*': {"**=", "**", "*=", "*"},
	'/': {"/=", "/"},
	'%': {"%=", "%"},
	'^': {"^=", "^"},
	'.': {"...", "."},
}

// Tokenize splits the file's code zones into tokens. String zones become a
// single TokString token so consumers can treat literals as atoms; comment
// and markdown block zones produce nothing.
func Tokenize(idx *Index) []Token {
	content := idx.File().Content
	fileID := idx.File().ID
	out := make([]Token, 0, 128)

	for _, z := range idx.Zones() {
		switch z.Kind {
		case ZoneString:
			out = append(out, Token{Kind: TokString, Span: z.Span, Text: string(content[z.Span.Start:z.Span.End])})
		case ZoneCode:
			out = tokenizeRange(out, content, fileID, z.Span.Start, z.Span.End)
		}
	}
	return out
}

func tokenizeRange(out []Token, content []byte, fileID source.FileID, start, end uint32) []Token {
	i := start
	for i < end {
		b := content[i]
		switch {
		case isIdentStart(b):
			j := i + 1
			for j < end && isIdentPart(content[j]) {
				j++
			}
			out = append(out, Token{
				Kind: TokIdent,
				Span: source.Span{File: fileID, Start: i, End: j},
				Text: string(content[i:j]),
			})
			i = j
		case b >= '0' && b <= '9':
			j := i + 1
			for j < end && (isIdentPart(content[j]) || content[j] == '.') {
				j++
			}
			out = append(out, Token{
				Kind: TokNumber,
				Span: source.Span{File: fileID, Start: i, End: j},
				Text: string(content[i:j]),
			})
			i = j
		case b == ' ' || b == '\t' || b == '\n' || b == '\r':
			i++
		default:
			text := matchPunct(content, i, end)
			if text == "" {
				// unknown byte: skip it rather than fail
				i++
				continue
			}
			j := i + uint32(len(text))
			out = append(out, Token{
				Kind: TokPunct,
				Span: source.Span{File: fileID, Start: i, End: j},
				Text: text,
			})
			i = j
		}
	}
	return out
}

func matchPunct(content []byte, i, end uint32) string {
	b := content[i]
	if cands, ok := punctTable[b]; ok {
		for _, c := range cands {
			if i+uint32(len(c)) <= end && string(content[i:i+uint32(len(c))]) == c {
				return c
			}
		}
	}
	switch b {
	case '{', '}', '(', ')', '[', ']', ',', ';', ':', '~', '@', '#':
		return string(b)
	}
	return ""
}

func isIdentStart(b byte) bool {
	return b == '_' || b == '$' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b >= 0x80
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}
