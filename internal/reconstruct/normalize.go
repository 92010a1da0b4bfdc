package reconstruct

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	spacedIm          = regexp.MustCompile(`(?i)\bI\s+'\s*m\b`)
	spacedContraction = regexp.MustCompile(`\b([A-Za-z])\s+'\s*([A-Za-z]+)\b`)
	spaceBeforePunct  = regexp.MustCompile(`\s+([,.!?:;])`)
	missingAfterStop  = regexp.MustCompile(`([.!?])([A-Za-z0-9"'(\[])`)
	missingAfterComma = regexp.MustCompile(`([,;:])([A-Za-z0-9"'(\[])`)
)

// Normalize 流结束后对全文做一次性清理
// 幂等，不会失败
func Normalize(text string) string {
	if text == "" {
		return text
	}

	text = Sanitize(text)
	text = strings.Join(strings.Fields(text), " ")

	text = untilStable(text, repairContractions)
	text = spaceBeforePunct.ReplaceAllString(text, "$1")
	text = missingAfterStop.ReplaceAllString(text, "$1 $2")
	text = missingAfterComma.ReplaceAllString(text, "$1 $2")
	text = collapseLetterRuns(text)

	// 两遍处理连续断开的单词，之后继续直到不再合并，保证幂等
	text = collapseMidWord(collapseMidWord(text))
	text = untilStable(text, collapseMidWord)

	return strings.Join(strings.Fields(text), " ")
}

func repairContractions(text string) string {
	text = spacedIm.ReplaceAllString(text, "I'm")
	return spacedContraction.ReplaceAllString(text, "$1'$2")
}

func untilStable(text string, pass func(string) string) string {
	for {
		next := pass(text)
		if next == text {
			return next
		}
		text = next
	}
}

// openingMarks 可以出现在单字母串首字母之前
var openingMarks = map[rune]struct{}{
	'(': {}, '[': {}, '{': {}, '"': {}, '\'': {}, '‘': {}, '“': {},
}

// collapseLetterRuns 合并两个及以上以空格分隔的单字母 ("C V E" -> "CVE")
// 第一个可带左括号或引号，最后一个可带结尾标点
func collapseLetterRuns(text string) string {
	tokens := strings.Split(text, " ")
	if len(tokens) < 2 {
		return text
	}

	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		if !isLetterToken(tokens[i], true, false) {
			out = append(out, tokens[i])
			i++
			continue
		}
		j := i + 1
		for j < len(tokens) && isLetterToken(tokens[j], false, false) {
			j++
		}
		if j < len(tokens) && isLetterToken(tokens[j], false, true) {
			j++
		}
		if j-i < 2 {
			out = append(out, tokens[i])
			i++
			continue
		}
		out = append(out, strings.Join(tokens[i:j], ""))
		i = j
	}
	return strings.Join(out, " ")
}

// isLetterToken tok 是否为单个 ASCII 字母
// opening 允许前置左括号/引号，closing 允许后缀非撇号的结尾标点
func isLetterToken(tok string, opening, closing bool) bool {
	if opening {
		for tok != "" {
			r, size := utf8.DecodeRuneInString(tok)
			if _, ok := openingMarks[r]; !ok {
				break
			}
			tok = tok[size:]
		}
	}
	if tok == "" || !isASCIILetter(rune(tok[0])) {
		return false
	}
	tail := tok[1:]
	if tail == "" {
		return true
	}
	if !closing {
		return false
	}
	for _, r := range tail {
		if _, ok := closingMarks[r]; !ok || r == '\'' || r == '’' {
			return false
		}
	}
	return true
}

// collapseMidWord 从左到右扫描一遍，合并看起来被流拆开的单词
// 同一遍中合并结果不再参与合并
func collapseMidWord(text string) string {
	tokens := strings.Split(text, " ")
	if len(tokens) < 2 {
		return text
	}

	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) && isSplitPair(tokens[i], tokens[i+1]) {
			out = append(out, tokens[i]+tokens[i+1])
			i++
			continue
		}
		out = append(out, tokens[i])
	}
	return strings.Join(out, " ")
}

// isSplitPair 全文版本的词中合并规则 (同流式规则 6a)
// 右侧小写且不是常见短词，左侧小写或首字母大写 (句首单词被拆开)，
// 两侧长度 1..maxSplitLen；右侧可带结尾标点
func isSplitPair(left, right string) bool {
	word, tail := splitWordTail(right)
	if tail != "" {
		r, _ := utf8.DecodeRuneInString(tail)
		if _, ok := closingMarks[r]; !ok || r == '\'' || r == '’' {
			return false
		}
	}
	if !isASCIIWord(left) || !isASCIIWord(word) {
		return false
	}
	if len(left) > maxSplitLen || len(word) > maxSplitLen {
		return false
	}
	if isSmallWord(word) {
		return false
	}
	return isLower(word) && (isLower(left) || isLower(left[1:]))
}

func splitWordTail(s string) (string, string) {
	i := 0
	for i < len(s) && isASCIILetter(rune(s[i])) {
		i++
	}
	return s[:i], s[i:]
}

func isASCIIWord(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isASCIILetter(rune(s[i])) {
			return false
		}
	}
	return true
}
