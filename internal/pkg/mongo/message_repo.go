package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MessageRepo interface {
	SaveMessage(ctx context.Context, msg *Message) error
	// ListPage 按创建时间倒序返回一页消息（最新的在前），
	// 调用方负责在返回客户端前反转为时间正序。
	ListPage(ctx context.Context, convID uint64, page, pageSize int) ([]*Message, error)
	MarkRead(ctx context.Context, convID uint64, readerID uint64) (int64, error)
	CountUnread(ctx context.Context, convID uint64, userID uint64) (int64, error)
}

type messageRepoImpl struct {
	col *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) MessageRepo {
	return &messageRepoImpl{
		col: db.Collection("messages"),
	}
}

// SaveMessage 将消息存入 MongoDB，并回填生成的 ObjectID
func (s *messageRepoImpl) SaveMessage(ctx context.Context, msg *Message) error {
	res, err := s.col.InsertOne(ctx, msg)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid.Hex()
	}
	return nil
}

// ListPage 分页查询消息
// 内部按 created_at 降序翻页（新消息在第一页），_id 兜底保证排序稳定。
func (s *messageRepoImpl) ListPage(ctx context.Context, convID uint64, page, pageSize int) ([]*Message, error) {
	filter := bson.M{"conversation_id": convID}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var messages []*Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

// MarkRead 把会话中对方发来的未读消息全部置为已读
// 操作天然幂等：第二次调用匹配不到任何文档。
func (s *messageRepoImpl) MarkRead(ctx context.Context, convID uint64, readerID uint64) (int64, error) {
	filter := bson.M{
		"conversation_id": convID,
		"sender_id":       bson.M{"$ne": readerID},
		"read":            false,
	}
	res, err := s.col.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountUnread 统计会话中对方发来的未读消息数
func (s *messageRepoImpl) CountUnread(ctx context.Context, convID uint64, userID uint64) (int64, error) {
	filter := bson.M{
		"conversation_id": convID,
		"sender_id":       bson.M{"$ne": userID},
		"read":            false,
	}
	return s.col.CountDocuments(ctx, filter)
}
