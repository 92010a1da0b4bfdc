package reconstruct

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Normalize 对完整文本做最终清理", t, func() {
		Convey("空格分隔的单字母合并", func() {
			So(Normalize("C V E"), ShouldEqual, "CVE")
			So(Normalize("The C V E list"), ShouldEqual, "The CVE list")
			So(Normalize("see (a b) then X Y."), ShouldEqual, "see (ab) then XY.")
		})

		Convey("撇号与逗号分隔的单字母不合并", func() {
			So(Normalize("a, b, c"), ShouldEqual, "a, b, c")
			So(Normalize("I'm a CISO"), ShouldEqual, "I'm a CISO")
		})

		Convey("拆开的缩写被修复", func() {
			So(Normalize("I ' m"), ShouldEqual, "I'm")
			So(Normalize("i ' M fine"), ShouldEqual, "I'm fine")
			So(Normalize("I ' ve seen it"), ShouldEqual, "I've seen it")
		})

		Convey("标点前的空格被删除", func() {
			So(Normalize("word ,"), ShouldEqual, "word,")
			So(Normalize("Really ?"), ShouldEqual, "Really?")
		})

		Convey("标点后补空格", func() {
			So(Normalize("Hello!How"), ShouldEqual, "Hello! How")
			So(Normalize("first,second"), ShouldEqual, "first, second")
			So(Normalize(`Quote:"run"`), ShouldEqual, `Quote: "run"`)
		})

		Convey("被拆开的单词合并", func() {
			So(Normalize("Lil ly is the cybersecurity assistant"), ShouldEqual, "Lilly is the cybersecurity assistant")
			So(Normalize("patch: vul ner ability"), ShouldEqual, "patch: vulnerability")
			So(Normalize("Lil ly is"), ShouldEqual, "Lilly is")
		})

		Convey("左侧单词不检查常见短词，小写短词对同样合并", func() {
			So(Normalize("is a dog"), ShouldEqual, "isadog")
			So(Normalize("the cat sat"), ShouldEqual, "thecatsat")
			So(Normalize("Lil ly is a cybersecurity assistant"), ShouldEqual, "Lillyisa cybersecurity assistant")
		})

		Convey("单个大写字母不作为被拆开单词的前半部分", func() {
			So(Normalize("I think"), ShouldEqual, "I think")
		})

		Convey("常见短词不参与合并", func() {
			So(Normalize("Patch it by Friday"), ShouldEqual, "Patch it by Friday")
		})

		Convey("空白折叠并去除首尾", func() {
			So(Normalize("  Stay\u00a0  SAFE\u200b  "), ShouldEqual, "Stay SAFE")
			So(Normalize(""), ShouldEqual, "")
			So(Normalize("   "), ShouldEqual, "")
		})
	})
}

var normalizeCorpus = []string{
	"",
	"Hello! How are you?",
	"C V E - 2 0 2 4",
	"I ' m Lil ly , a cyber security assistant .",
	"a 'b 'c 'd",
	"ab cd ef gh ij kl",
	"Hel lo wor ld",
	"e.g.x and i.e.y",
	"3.14 is pi",
	"x ' y z",
	"(a b c) [d e]",
	"word , word ; word : word",
	"Use\u200b zero\u00adwidth\u2060 chars",
	"don ' t stop , won ' t stop",
	"The CVE-2024-3094 backdoor in xz utils.",
	"\"quoted\"text.'single'",
	"A B C. D E F!",
	"mid word split ting is hard",
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, in := range normalizeCorpus {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
