package reconstruct

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSanitize(t *testing.T) {
	Convey("Sanitize 清理不可见字符", t, func() {
		Convey("零宽字符与 BOM 被删除", func() {
			So(Sanitize("a\u200bb\u200cc\u200dd\ufeffe\u2060f"), ShouldEqual, "abcdef")
		})

		Convey("软连字符被删除", func() {
			So(Sanitize("soft\u00adhyphen"), ShouldEqual, "softhyphen")
		})

		Convey("不换行空格替换为普通空格", func() {
			So(Sanitize("no\u00a0break\u202fspace"), ShouldEqual, "no break space")
		})

		Convey("控制字符与私用区字符被删除", func() {
			So(Sanitize("\u0007bell"), ShouldEqual, "bell")
			So(Sanitize("tab\there"), ShouldEqual, "tabhere")
			So(Sanitize("private\ue000use"), ShouldEqual, "privateuse")
		})

		Convey("可见字符保持不变", func() {
			So(Sanitize("CVE-2024-1234: ünïcode 😀 ok"), ShouldEqual, "CVE-2024-1234: ünïcode 😀 ok")
		})

		Convey("空串", func() {
			So(Sanitize(""), ShouldEqual, "")
		})
	})
}

func TestSanitize_Properties(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"\u200b\u200b",
		"mixed\u00a0\u00ad\u202f\u2060\r\n\tend",
		"\x00\x01\x1f\x7f\u0085",
		"emoji 👩\u200d💻 joined",
		"rtl \u202emark\u202c",
	}

	for _, in := range inputs {
		out := Sanitize(in)
		for _, r := range out {
			if isInvisible(r) {
				t.Errorf("Sanitize(%q) kept %U", in, r)
			}
		}
		if again := Sanitize(out); again != out {
			t.Errorf("Sanitize not idempotent for %q: %q != %q", in, again, out)
		}
	}
}
