package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"lilly/internal/conversation"
	"lilly/internal/model"
)

// ConversationRepo 对话归档仓库
type ConversationRepo struct {
	collection *mongo.Collection
}

// NewConversationRepo 创建对话仓库
func NewConversationRepo(db *mongo.Database) *ConversationRepo {
	return &ConversationRepo{
		collection: db.Collection((&model.Conversation{}).Collection()),
	}
}

// AppendTurns 追加消息，会话不存在时创建
func (r *ConversationRepo) AppendTurns(ctx context.Context, sessionID string, turns ...conversation.Turn) error {
	if len(turns) == 0 {
		return nil
	}

	now := time.Now()
	msgs := make([]model.Message, 0, len(turns))
	for _, t := range turns {
		msgs = append(msgs, model.Message{Role: t.Role, Content: t.Text, Timestamp: now})
	}

	update := bson.M{
		"$push":        bson.M{"messages": bson.M{"$each": msgs}},
		"$set":         bson.M{"updated_at": now},
		"$setOnInsert": bson.M{"session_id": sessionID, "created_at": now},
	}

	_, err := r.collection.UpdateOne(ctx, bson.M{"session_id": sessionID}, update, options.Update().SetUpsert(true))
	return err
}

// MarkCleared 记录清空时间
func (r *ConversationRepo) MarkCleared(ctx context.Context, sessionID string) error {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{"cleared_at": now, "updated_at": now},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"session_id": sessionID}, update)
	return err
}

// FindBySessionID 根据会话 ID 查询
func (r *ConversationRepo) FindBySessionID(ctx context.Context, sessionID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.collection.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&conv)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// Delete 删除会话归档
func (r *ConversationRepo) Delete(ctx context.Context, sessionID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"session_id": sessionID})
	return err
}
