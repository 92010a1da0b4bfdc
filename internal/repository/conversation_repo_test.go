package repository

import (
	"context"
	"os"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"lilly/internal/config"
	"lilly/internal/conversation"
	"lilly/internal/pkg/id"
	"lilly/internal/pkg/mongodb"
)

// 需要 MongoDB: MONGO_URI=mongodb://localhost:27017 go test ./internal/repository/...
func TestConversationRepo(t *testing.T) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	client, err := mongodb.New(&config.MongoConfig{URI: uri, Database: "lilly_test", MaxPoolSize: 4})
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	defer client.Close(context.Background())

	if err := mongodb.EnsureIndexes(client.Database()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	Convey("ConversationRepo 归档", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		repo := NewConversationRepo(client.Database())
		sid := id.New()
		defer repo.Delete(ctx, sid)

		So(repo.AppendTurns(ctx, sid, conversation.Turn{Role: conversation.RoleUser, Text: "hi"}), ShouldBeNil)
		So(repo.AppendTurns(ctx, sid, conversation.Turn{Role: conversation.RoleAssistant, Text: "hello"}), ShouldBeNil)
		So(repo.MarkCleared(ctx, sid), ShouldBeNil)

		conv, err := repo.FindBySessionID(ctx, sid)
		So(err, ShouldBeNil)
		So(conv.SessionID, ShouldEqual, sid)
		So(conv.Messages, ShouldHaveLength, 2)
		So(conv.Messages[1].Content, ShouldEqual, "hello")
		So(conv.ClearedAt, ShouldNotBeNil)
	})
}
