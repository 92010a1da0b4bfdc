package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"lilly/internal/model"
)

// EnsureIndexes 创建所有模型的索引，应用启动时调用
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	models := []Model{
		&model.Conversation{},
	}
	return EnsureAllIndexes(ctx, db, models...)
}
