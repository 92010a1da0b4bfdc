package reconstruct

import (
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// pushAll 依次推入片段，返回每次交付的增量
func pushAll(acc *Accumulator, fragments ...string) []string {
	var deltas []string
	for _, f := range fragments {
		delta, err := acc.Push(f)
		So(err, ShouldBeNil)
		So(acc.Emitted(), ShouldBeLessThanOrEqualTo, len(acc.Text()))
		deltas = append(deltas, delta)
	}
	return deltas
}

func TestAccumulator(t *testing.T) {
	Convey("Accumulator 增量交付", t, func() {
		acc := NewAccumulator()

		Convey("单字母序列重建为 CVE", func() {
			deltas := pushAll(acc, "C", " ", "V", " ", "E")
			So(deltas, ShouldResemble, []string{"C", " ", "V", " ", "E"})
			So(strings.Join(deltas, ""), ShouldEqual, acc.Text())
			So(acc.Close(), ShouldEqual, "CVE")
		})

		Convey("拆开的 I'm 被修复", func() {
			pushAll(acc, "I", " ", "'", " ", "m")
			So(acc.Text(), ShouldEqual, "I ' m")
			So(acc.Close(), ShouldContainSubstring, "I'm")
		})

		Convey("句末标点后补空格", func() {
			deltas := pushAll(acc, "Hello!", "How")
			So(deltas, ShouldResemble, []string{"Hello!", " How"})
			So(acc.Close(), ShouldEqual, "Hello! How")
		})

		Convey("逗号前不留空格", func() {
			deltas := pushAll(acc, "word", " ,")
			So(deltas[1], ShouldEqual, ",")
			So(acc.Text(), ShouldEqual, "word,")
			So(acc.Close(), ShouldEqual, "word,")
		})

		Convey("词中断开在最终处理时合并", func() {
			pushAll(acc, "Lil", "ly is the cybersecurity assistant")
			So(acc.Text(), ShouldEqual, "Lil ly is the cybersecurity assistant")
			So(acc.Close(), ShouldEqual, "Lilly is the cybersecurity assistant")
		})

		Convey("换行片段被清理掉，前后片段按词中断开拼接", func() {
			deltas := pushAll(acc, "cyber", "\n", "attack")
			So(strings.Join(deltas, ""), ShouldEqual, "cyberattack")
			So(acc.Close(), ShouldEqual, "cyberattack")
		})

		Convey("空片段不推进偏移量", func() {
			pushAll(acc, "abc")
			before := acc.Emitted()
			delta, err := acc.Push("")
			So(err, ShouldBeNil)
			So(delta, ShouldEqual, "")
			So(acc.Emitted(), ShouldEqual, before)
			So(acc.Fragments(), ShouldEqual, 2)
		})

		Convey("关闭后拒绝新片段", func() {
			pushAll(acc, "done")
			acc.Close()
			So(acc.Closed(), ShouldBeTrue)
			_, err := acc.Push("more")
			So(err, ShouldEqual, ErrClosed)
			_, err = acc.Append("more")
			So(err, ShouldEqual, ErrClosed)
		})

		Convey("Abort 返回未规范化文本", func() {
			pushAll(acc, "C", " ", "V")
			So(acc.Abort(), ShouldEqual, "C V")
		})
	})
}

func TestAccumulator_PrefixExact(t *testing.T) {
	streams := [][]string{
		{"Hel", "lo", " world", "!", " How", " are", " you", "?"},
		{" ", "", "\u200b", "CVE", "-", "2024", "-", "3094", " is", " bad", "."},
		{"I", "'", "m", " Lil", "ly", ",", " a", " cyber", "security", " assistant"},
		{"line\n", "\nbreak", "\t", "tab"},
	}

	for _, fragments := range streams {
		acc := NewAccumulator()
		var released strings.Builder
		for _, f := range fragments {
			delta, err := acc.Push(f)
			if err != nil {
				t.Fatalf("Push(%q): %v", f, err)
			}
			released.WriteString(delta)
			if acc.Emitted() != len(acc.Text()) {
				t.Fatalf("emitted %d != accumulated %d", acc.Emitted(), len(acc.Text()))
			}
		}
		if got := released.String(); got != acc.Text() {
			t.Errorf("released %q, accumulated %q", got, acc.Text())
		}
	}
}
