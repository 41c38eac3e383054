package repository

import (
	"context"
	"fmt"

	"github.com/grigta/predmaint/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordRepository репозиторий для работы с записями обслуживания
type RecordRepository struct {
	collection *mongo.Collection
}

// NewRecordRepository создает новый репозиторий записей
func NewRecordRepository(db *mongo.Database, collection string) *RecordRepository {
	return &RecordRepository{
		collection: db.Collection(collection),
	}
}

// GetByScope возвращает записи выбранной категории либо весь набор.
// Порядок чтения стабилен (по _id), сортировку по датам выполняет препроцессор.
func (r *RecordRepository) GetByScope(ctx context.Context, category string) ([]models.RawRecord, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read maintenance records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.RawRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode maintenance records: %w", err)
	}

	return records, nil
}

// SnapshotByScope возвращает идентичность текущего среза данных для ключа
// кэша: идентификатор набора и число записей в области. Один счетчик не
// различает переимпорт с тем же размером, поэтому в снимок входит dataset_id.
func (r *RecordRepository) SnapshotByScope(ctx context.Context, category string) (models.DatasetSnapshot, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return models.DatasetSnapshot{}, fmt.Errorf("failed to size data snapshot: %w", err)
	}
	if count == 0 {
		return models.DatasetSnapshot{}, nil
	}

	var marker struct {
		DatasetID string `bson:"dataset_id"`
	}
	opts := options.FindOne().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetProjection(bson.M{"dataset_id": 1})
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&marker); err != nil {
		return models.DatasetSnapshot{}, fmt.Errorf("failed to identify data snapshot: %w", err)
	}

	return models.DatasetSnapshot{DatasetID: marker.DatasetID, Records: count}, nil
}

// ReplaceDataset заменяет весь набор записей новым импортом
func (r *RecordRepository) ReplaceDataset(ctx context.Context, datasetID string, records []models.RawRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("refusing to replace dataset with zero records")
	}

	docs := make([]interface{}, 0, len(records))
	for i := range records {
		records[i].ID = primitive.NewObjectID()
		records[i].DatasetID = datasetID
		docs = append(docs, records[i])
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert maintenance records: %w", err)
	}

	// Старые наборы удаляются после успешной вставки нового
	if _, err := r.collection.DeleteMany(ctx, bson.M{"dataset_id": bson.M{"$ne": datasetID}}); err != nil {
		return fmt.Errorf("failed to drop previous datasets: %w", err)
	}

	return nil
}
