package command

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

// Token codes
const (
	whitespaceCode = iota + 1
	wordCode
	numberCode
	textCode
)

// Token definitions
var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	wordToken       = parsly.NewToken(wordCode, "Command", &wordMatcher{})
	numberToken     = parsly.NewToken(numberCode, "Number", &numberMatcher{})
	textToken       = parsly.NewToken(textCode, "Text", &textMatcher{})
)

// wordMatcher matches a run of letters.
type wordMatcher struct{}

func (m *wordMatcher) Match(cursor *parsly.Cursor) int {
	matched := 0
	for i := cursor.Pos; i < cursor.InputSize && isLetter(cursor.Input[i]); i++ {
		matched++
	}
	return matched
}

// numberMatcher matches an optionally negative integer.
type numberMatcher struct{}

func (m *numberMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	if pos < cursor.InputSize && input[pos] == '-' {
		pos++
	}
	digits := 0
	for i := pos; i < cursor.InputSize && isDigit(input[i]); i++ {
		digits++
	}
	if digits == 0 {
		return 0
	}
	return pos - cursor.Pos + digits
}

// textMatcher matches the rest of the line.
type textMatcher struct{}

func (m *textMatcher) Match(cursor *parsly.Cursor) int {
	matched := 0
	for i := cursor.Pos; i < cursor.InputSize && cursor.Input[i] != '\n'; i++ {
		matched++
	}
	return matched
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
