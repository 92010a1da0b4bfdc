package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"lilly/internal/config"
	"lilly/internal/pkg/ctxutil"
	"lilly/internal/pkg/id"
)

var testSession = config.SessionConfig{
	CookieName:  "lilly_session",
	Header:      "X-Session-ID",
	MaxSessions: 16,
	TTL:         30 * time.Minute,
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.Use(handlers...)
	engine.GET("/ping", func(c *gin.Context) {
		fromCtx, _ := ctxutil.GetSessionID(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"session_id": c.GetString(SessionIDKey), "ctx": fromCtx})
	})
	engine.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})
	return engine
}

func do(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestSession(t *testing.T) {
	Convey("Session 中间件", t, func() {
		engine := newEngine(Session(testSession))

		Convey("没有会话时生成新的并下发 cookie", func() {
			w := do(engine, httptest.NewRequest(http.MethodGet, "/ping", nil))
			So(w.Code, ShouldEqual, http.StatusOK)

			sessionID := w.Header().Get("X-Session-ID")
			So(id.IsValid(sessionID), ShouldBeTrue)

			cookies := w.Result().Cookies()
			So(cookies, ShouldHaveLength, 1)
			So(cookies[0].Name, ShouldEqual, "lilly_session")
			So(cookies[0].Value, ShouldEqual, sessionID)
			So(cookies[0].HttpOnly, ShouldBeTrue)
			So(w.Body.String(), ShouldContainSubstring, `"ctx":"`+sessionID+`"`)
		})

		Convey("沿用 cookie 中的会话", func() {
			existing := id.New()
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.AddCookie(&http.Cookie{Name: "lilly_session", Value: existing})

			w := do(engine, req)
			So(w.Header().Get("X-Session-ID"), ShouldEqual, existing)
			So(w.Result().Cookies(), ShouldBeEmpty)
		})

		Convey("header 优先于 cookie", func() {
			fromHeader := id.New()
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("X-Session-ID", fromHeader)
			req.AddCookie(&http.Cookie{Name: "lilly_session", Value: id.New()})

			w := do(engine, req)
			So(w.Header().Get("X-Session-ID"), ShouldEqual, fromHeader)
		})

		Convey("无效的会话 ID 被替换", func() {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("X-Session-ID", "not-a-uuid")

			w := do(engine, req)
			So(w.Header().Get("X-Session-ID"), ShouldNotEqual, "not-a-uuid")
			So(id.IsValid(w.Header().Get("X-Session-ID")), ShouldBeTrue)
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("按会话限流", t, func() {
		limiter, err := NewSessionRateLimiter(config.RateLimitConfig{Enabled: true, MessagesPerMinute: 2}, 16)
		So(err, ShouldBeNil)
		engine := newEngine(Session(testSession), limiter.Middleware())

		request := func(sessionID string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("X-Session-ID", sessionID)
			return do(engine, req)
		}

		first := id.New()
		So(request(first).Code, ShouldEqual, http.StatusOK)
		So(request(first).Code, ShouldEqual, http.StatusOK)

		w := request(first)
		So(w.Code, ShouldEqual, http.StatusTooManyRequests)
		So(w.Header().Get("X-RateLimit-Limit"), ShouldEqual, "2")
		So(w.Header().Get("Retry-After"), ShouldNotBeEmpty)
		So(w.Body.String(), ShouldContainSubstring, `"code":42901`)

		So(request(id.New()).Code, ShouldEqual, http.StatusOK)
	})
}

func TestRequestID(t *testing.T) {
	Convey("请求 ID", t, func() {
		engine := newEngine(RequestID())

		w := do(engine, httptest.NewRequest(http.MethodGet, "/ping", nil))
		So(id.IsValid(w.Header().Get(RequestIDHeader)), ShouldBeTrue)

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "trace-1")
		w = do(engine, req)
		So(w.Header().Get(RequestIDHeader), ShouldEqual, "trace-1")
	})
}

func TestRecovery(t *testing.T) {
	Convey("panic 被恢复为 500", t, func() {
		engine := newEngine(Recovery(), Logger())

		w := do(engine, httptest.NewRequest(http.MethodGet, "/panic", nil))
		So(w.Code, ShouldEqual, http.StatusInternalServerError)
		So(w.Body.String(), ShouldContainSubstring, `"code":50000`)
	})
}

func TestCORS(t *testing.T) {
	Convey("CORS", t, func() {
		Convey("默认允许所有来源", func() {
			engine := newEngine(CORS(config.CORSConfig{}, "X-Session-ID"))
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Origin", "http://example.com")

			w := do(engine, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})

		Convey("只允许配置的来源", func() {
			engine := newEngine(CORS(config.CORSConfig{AllowOrigins: []string{"http://dash.local"}}, "X-Session-ID"))

			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Origin", "http://dash.local")
			w := do(engine, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "http://dash.local")

			req = httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.Header.Set("Origin", "http://evil.local")
			w = do(engine, req)
			So(w.Code, ShouldEqual, http.StatusForbidden)
		})
	})
}
