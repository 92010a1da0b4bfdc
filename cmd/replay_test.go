package cmd

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const capturedStream = `data: {"choices":[{"delta":{"content":"C"}}]}
data: {"choices":[{"delta":{"content":" V"}}]}
data: {"choices":[{"delta":{"content":" E"}}]}
data: {"choices":[{"delta":{"content":" ,"}}]}
data: {"choices":[{"delta":{"content":" I"}}]}
data: {"choices":[{"delta":{"content":" '"}}]}
data: {"choices":[{"delta":{"content":" m"}}]}
data: [DONE]
`

func TestReplay(t *testing.T) {
	Convey("replay 重建传输记录", t, func() {
		ctx := context.Background()

		Convey("增量输出是未规范化的累积文本", func() {
			var out bytes.Buffer
			err := replay(ctx, io.NopCloser(strings.NewReader(capturedStream)), &out, "Lilly", false)
			So(err, ShouldBeNil)
			So(out.String(), ShouldEqual, "C V E, I'm\n")
		})

		Convey("只输出终值", func() {
			var out bytes.Buffer
			err := replay(ctx, io.NopCloser(strings.NewReader(capturedStream)), &out, "Lilly", true)
			So(err, ShouldBeNil)
			So(out.String(), ShouldEqual, "CVE, I'm\n")
		})

		Convey("原始文本行", func() {
			var out bytes.Buffer
			err := replay(ctx, io.NopCloser(strings.NewReader("Hello\n!\n")), &out, "Lilly", true)
			So(err, ShouldBeNil)
			So(out.String(), ShouldEqual, "Hello!\n")
		})
	})
}
