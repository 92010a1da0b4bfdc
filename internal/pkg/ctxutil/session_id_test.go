package ctxutil

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSessionID(t *testing.T) {
	Convey("会话 ID 在 context 中传递", t, func() {
		_, ok := GetSessionID(context.Background())
		So(ok, ShouldBeFalse)

		ctx := WithSessionID(context.Background(), "abc")
		id, ok := GetSessionID(ctx)
		So(ok, ShouldBeTrue)
		So(id, ShouldEqual, "abc")

		_, ok = GetSessionID(WithSessionID(context.Background(), ""))
		So(ok, ShouldBeFalse)
	})
}
