package reconstruct

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

var (
	// spaceMapper 不换行空格替换为普通空格
	spaceMapper = runes.Map(func(r rune) rune {
		switch r {
		case '\u00a0', '\u202f':
			return ' '
		}
		return r
	})

	// invisibleRemover 删除软连字符、零宽字符以及 Unicode "C" 类字符 (Cc, Cf, Cs, Co, Cn)
	invisibleRemover = runes.Remove(runes.Predicate(isInvisible))
)

// Sanitize 清理控制字符、格式字符和不可见字符，并规范不换行空格
// 幂等，不会失败
func Sanitize(text string) string {
	if text == "" {
		return text
	}

	// runes.Map 与 runes.Remove 不会返回错误
	cleaned, _, _ := transform.String(transform.Chain(spaceMapper, invisibleRemover), text)
	return cleaned
}

func isInvisible(r rune) bool {
	switch r {
	case '\u00ad', '\u200b', '\u200c', '\u200d', '\ufeff', '\u2060':
		return true
	}
	return isOther(r)
}

// isOther r 是否属于 "C" 开头的通用类别，未分配码位视为 Cn
func isOther(r rune) bool {
	return !unicode.In(r, unicode.L, unicode.M, unicode.N, unicode.P, unicode.S, unicode.Z)
}
