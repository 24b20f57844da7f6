package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderservice/internal/app/shop/entity"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type importTaskRepository struct {
	collection *mongo.Collection
}

// NewImportTaskRepository создает новый репозиторий задач импорта в MongoDB
func NewImportTaskRepository(db *mongo.Database) ImportTaskRepository {
	return &importTaskRepository{
		collection: db.Collection("import_tasks"),
	}
}

// EnsureImportTaskIndexes создает индексы коллекции задач импорта
func EnsureImportTaskIndexes(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("import_tasks")

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "task_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create import task indexes: %w", err)
	}

	return nil
}

// Create сохраняет новую задачу импорта в статусе queued
func (r *importTaskRepository) Create(ctx context.Context, task *entity.ImportTask) error {
	_, err := r.collection.InsertOne(ctx, task)
	if err != nil {
		return fmt.Errorf("failed to create import task: %w", err)
	}

	return nil
}

// MarkRunning помечает задачу взятой в работу
func (r *importTaskRepository) MarkRunning(ctx context.Context, taskID string) error {
	filter := bson.M{"task_id": taskID}
	update := bson.M{"$set": bson.M{"status": entity.ImportTaskRunning}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark import task running: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// Finish записывает итог задачи: статистику при успехе либо текст ошибки
func (r *importTaskRepository) Finish(ctx context.Context, taskID string, stats *entity.ImportStats, errText string) error {
	now := time.Now()

	set := bson.M{
		"finished_at": now,
	}
	if errText != "" {
		set["status"] = entity.ImportTaskError
		set["error"] = errText
	} else {
		set["status"] = entity.ImportTaskDone
	}
	if stats != nil {
		set["stats"] = stats
	}

	filter := bson.M{"task_id": taskID}
	update := bson.M{"$set": set}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to finish import task: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// GetByID получает задачу импорта по её идентификатору
func (r *importTaskRepository) GetByID(ctx context.Context, taskID string) (*entity.ImportTask, error) {
	filter := bson.M{"task_id": taskID}

	var task entity.ImportTask
	err := r.collection.FindOne(ctx, filter).Decode(&task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to get import task: %w", err)
	}

	return &task, nil
}
