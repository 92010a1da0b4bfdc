package reconstruct

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxSplitLen 词中断开合并时两侧单词的最大长度
const maxSplitLen = 8

// commonSmallWords 常见短词，不作为被拆开单词的后半部分
var commonSmallWords = map[string]struct{}{
	"the": {}, "and": {}, "of": {}, "to": {}, "in": {}, "on": {}, "is": {},
	"it": {}, "by": {}, "for": {}, "as": {}, "at": {}, "an": {}, "be": {},
}

// closingMarks 紧贴前文，不插入空格
var closingMarks = map[rune]struct{}{
	',': {}, '.': {}, '!': {}, '?': {}, ':': {}, ';': {}, '%': {},
	')': {}, ']': {}, '}': {}, '\'': {}, '’': {},
}

// Join 空格启发式: 决定片段追加到 accumulated 后面的确切内容
// 返回清理后去掉前导空格的片段，必要时在前面补一个空格。
// 只检查 accumulated 的最后一个字符和末尾的字母串。
func Join(accumulated, fragment string) string {
	if fragment == "" {
		return ""
	}

	// 先清理再折叠空白: 换行等控制字符 (Cc) 直接删除，不转为空格
	token := collapseSpaces(Sanitize(fragment))
	hasLeading := strings.HasPrefix(token, " ")
	token = strings.TrimLeft(token, " ")
	if token == "" {
		if hasLeading {
			return " "
		}
		return ""
	}

	prevLast, hasPrev := lastRune(accumulated)
	prevWord := trailingWord(accumulated)
	first, _ := utf8.DecodeRuneInString(token)

	if _, ok := closingMarks[first]; ok {
		return token
	}
	if hasPrev && isTerminator(prevLast) && unicode.IsLetter(first) {
		return " " + token
	}
	if hasPrev && isClauseMark(prevLast) && unicode.IsLetter(first) {
		return " " + token
	}
	if hasPrev && unicode.IsSpace(prevLast) {
		return token
	}
	if prevWord != "" && isAlpha(token) {
		if joinsWord(prevWord, token) {
			return token
		}
		return " " + token
	}
	if hasPrev && isAlnum(prevLast) && unicode.IsLetter(first) {
		return " " + token
	}
	return token
}

// joinsWord 纯字母片段紧跟纯字母单词时是否直接拼接
func joinsWord(prevWord, token string) bool {
	switch {
	case isLower(prevWord) && isLower(token):
		return !isSmallWord(token) && utf8.RuneCountInString(prevWord) <= maxSplitLen &&
			utf8.RuneCountInString(token) <= maxSplitLen
	case isLower(prevWord) && startsUpper(token):
		return false
	case isUpper(prevWord) && isLower(token):
		return true
	}
	return false
}

func isSmallWord(word string) bool {
	_, ok := commonSmallWords[strings.ToLower(word)]
	return ok
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isClauseMark(r rune) bool {
	return r == ',' || r == ';' || r == ':'
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isASCIILetter(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
}

func lastRune(s string) (rune, bool) {
	if s == "" {
		return 0, false
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return r, true
}

// trailingWord s 末尾的最长 ASCII 字母串
func trailingWord(s string) string {
	i := len(s)
	for i > 0 && isASCIILetter(rune(s[i-1])) {
		i--
	}
	return s[i:]
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// isLower 至少含一个有大小写的字符且没有大写字符
func isLower(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			return false
		case unicode.IsLower(r):
			cased = true
		}
	}
	return cased
}

// isUpper 至少含一个有大小写的字符且没有小写字符
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		switch {
		case unicode.IsLower(r) || unicode.IsTitle(r):
			return false
		case unicode.IsUpper(r):
			cased = true
		}
	}
	return cased
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}

// collapseSpaces 连续空白折叠为一个空格，保留首尾
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
