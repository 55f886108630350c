// Package mongostore はMongoDBのコレクションを使ったTodoリポジトリです。
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"fullstack-todolist/backend/internal/models"
	"fullstack-todolist/backend/internal/repositories"
)

var _ repositories.TodoRepository = (*TodoRepository)(nil)

// todoDocument はコレクションに保存されるドキュメントの形です。
type todoDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	IsCompleted bool               `bson:"isCompleted"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d *todoDocument) toModel() *models.Todo {
	return &models.Todo{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		IsCompleted: d.IsCompleted,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func fromModel(t *models.Todo) *todoDocument {
	return &todoDocument{
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// TodoRepository はMongoDBのコレクションに対するTodo操作を提供します。
type TodoRepository struct {
	coll *mongo.Collection
}

// NewTodoRepository は新しいTodoRepositoryを作成します。
func NewTodoRepository(coll *mongo.Collection) *TodoRepository {
	return &TodoRepository{coll: coll}
}

// IndexModels はシード時に作成するインデックスです。
// title/description の全文検索インデックスと、createdAt の降順インデックス。
func IndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func searchFilter(search string) bson.M {
	if search == "" {
		return bson.M{}
	}
	return bson.M{"$text": bson.M{"$search": search}}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", models.ErrInvalidID, id)
	}
	return oid, nil
}

// Create は新しいTodoを挿入し、採番されたIDをセットして返します。
func (r *TodoRepository) Create(ctx context.Context, t *models.Todo) (*models.Todo, error) {
	doc := fromModel(t)
	doc.ID = primitive.NewObjectID()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("could not insert todo: %w", err)
	}
	return doc.toModel(), nil
}

// FindAll はすべてのTodoを作成日時の降順で取得します。
func (r *TodoRepository) FindAll(ctx context.Context, search string) ([]*models.Todo, error) {
	cursor, err := r.coll.Find(ctx, searchFilter(search), options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, fmt.Errorf("could not query todos: %w", err)
	}
	return decodeAll(ctx, cursor)
}

// FindPage は指定ページのTodoと、条件に一致する総件数を返します。
func (r *TodoRepository) FindPage(ctx context.Context, q repositories.ListQuery) ([]*models.Todo, int64, error) {
	filter := searchFilter(q.Search)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("could not count todos: %w", err)
	}

	opts := options.Find().
		SetSort(newestFirst).
		SetSkip(int64(q.Offset())).
		SetLimit(int64(q.Limit))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("could not query todos: %w", err)
	}
	todos, err := decodeAll(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	return todos, total, nil
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]*models.Todo, error) {
	var docs []todoDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("could not decode todos: %w", err)
	}
	todos := make([]*models.Todo, 0, len(docs))
	for i := range docs {
		todos = append(todos, docs[i].toModel())
	}
	return todos, nil
}

// FindByID は指定IDのTodoを取得します。
func (r *TodoRepository) FindByID(ctx context.Context, id string) (*models.Todo, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc todoDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrTodoNotFound
		}
		return nil, fmt.Errorf("could not query todo: %w", err)
	}
	return doc.toModel(), nil
}

// Update は指定IDのTodoを部分更新し、更新後のTodoを返します。
func (r *TodoRepository) Update(ctx context.Context, id string, u repositories.TodoUpdate) (*models.Todo, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	set := bson.D{{Key: "updatedAt", Value: u.UpdatedAt}}
	if u.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *u.Title})
	}
	if u.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *u.Description})
	}
	if u.IsCompleted != nil {
		set = append(set, bson.E{Key: "isCompleted", Value: *u.IsCompleted})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc todoDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrTodoNotFound
		}
		return nil, fmt.Errorf("could not update todo: %w", err)
	}
	return doc.toModel(), nil
}

// Delete は指定IDのTodoを削除します。
func (r *TodoRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("could not delete todo: %w", err)
	}
	if res.DeletedCount == 0 {
		return models.ErrTodoNotFound
	}
	return nil
}

// InsertMany はTodoをまとめて挿入し、挿入件数を返します。各Todoには採番されたIDがセットされます。
func (r *TodoRepository) InsertMany(ctx context.Context, todos []*models.Todo) (int, error) {
	if len(todos) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, len(todos))
	for i, t := range todos {
		doc := fromModel(t)
		doc.ID = primitive.NewObjectID()
		t.ID = doc.ID.Hex()
		docs[i] = doc
	}

	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("could not insert todos: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// EnsureIndexes は全文検索インデックスと作成日時インデックスを作成します。既存の場合は何もしません。
func (r *TodoRepository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.coll.Indexes().CreateMany(ctx, IndexModels()); err != nil {
		return fmt.Errorf("could not create indexes: %w", err)
	}
	return nil
}

// Ping はMongoDBへの疎通を確認します。
func (r *TodoRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}
