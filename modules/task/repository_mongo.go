package task

import (
	"context"
	"fmt"
	"log"
	"time"

	domain "github.com/example/todo-app/domain/task"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const tasksCollection = "tasks"

// taskDocument is the stored shape of a task. The owner is kept as user_id.
type taskDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      primitive.ObjectID `bson:"user_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	DueDate     string             `bson:"due_date"`
	Completed   bool               `bson:"completed"`
	Version     int64              `bson:"version"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d *taskDocument) toDomain() domain.Task {
	return domain.Task{
		ID:          d.ID.Hex(),
		OwnerID:     d.UserID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		Completed:   d.Completed,
		Version:     d.Version,
		CreatedAt:   d.CreatedAt,
	}
}

// MongoTaskRepository stores tasks in MongoDB.
type MongoTaskRepository struct {
	coll *mongo.Collection
}

// NewMongoTaskRepository returns a repository over db's tasks collection and
// ensures the per-owner unique title index exists.
func NewMongoTaskRepository(ctx context.Context, db *mongo.Database) (*MongoTaskRepository, error) {
	coll := db.Collection(tasksCollection)

	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "title", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_user_title"),
	})
	if err != nil {
		log.Printf("[task] Warning: could not create unique title index: %v", err)
	}

	return &MongoTaskRepository{coll: coll}, nil
}

func (r *MongoTaskRepository) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []domain.Task{}, nil
	}

	cursor, err := r.coll.Find(ctx, bson.M{"user_id": owner})
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []taskDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}

	tasks := make([]domain.Task, 0, len(docs))
	for i := range docs {
		tasks = append(tasks, docs[i].toDomain())
	}
	return tasks, nil
}

func (r *MongoTaskRepository) TitleExists(ctx context.Context, ownerID, title string) (bool, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return false, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"user_id": owner, "title": title}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n > 0, nil
}

func (r *MongoTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	owner, err := primitive.ObjectIDFromHex(task.OwnerID)
	if err != nil {
		return fmt.Errorf("invalid owner id %q: %w", task.OwnerID, err)
	}

	doc := taskDocument{
		UserID:      owner,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Completed:   task.Completed,
		Version:     task.Version,
		CreatedAt:   task.CreatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateTitle
		}
		return fmt.Errorf("failed to insert task: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	task.ID = oid.Hex()
	return nil
}

// ownedFilter matches one task of one owner. ok is false when either id
// cannot be a stored ObjectID, in which case nothing can match.
func ownedFilter(ownerID, taskID string) (bson.M, bool) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, false
	}
	id, err := primitive.ObjectIDFromHex(taskID)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": id, "user_id": owner}, true
}

func (r *MongoTaskRepository) SetCompleted(ctx context.Context, ownerID, taskID string, completed bool, expectedVersion int64) error {
	filter, ok := ownedFilter(ownerID, taskID)
	if !ok {
		return ErrTaskNotFound
	}

	cond := bson.M{}
	for k, v := range filter {
		cond[k] = v
	}
	if expectedVersion > 0 {
		cond["version"] = expectedVersion
	}

	res, err := r.coll.UpdateOne(ctx, cond, bson.M{
		"$set": bson.M{"completed": completed},
		"$inc": bson.M{"version": 1},
	})
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	if expectedVersion > 0 {
		n, err := r.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
		if err != nil {
			return fmt.Errorf("failed to count tasks: %w", err)
		}
		if n > 0 {
			return ErrStaleTask
		}
	}
	return ErrTaskNotFound
}

func (r *MongoTaskRepository) Delete(ctx context.Context, ownerID, taskID string) error {
	filter, ok := ownedFilter(ownerID, taskID)
	if !ok {
		return ErrTaskNotFound
	}

	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *MongoTaskRepository) DeleteCompleted(ctx context.Context, ownerID string) (int64, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return 0, nil
	}

	res, err := r.coll.DeleteMany(ctx, bson.M{"user_id": owner, "completed": true})
	if err != nil {
		return 0, fmt.Errorf("failed to delete completed tasks: %w", err)
	}
	return res.DeletedCount, nil
}
