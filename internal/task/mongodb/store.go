package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/teamboard/teamboard/internal/ierr"
	"github.com/teamboard/teamboard/internal/task"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type document struct {
	ID          int64          `bson:"_id"`
	ProjectID   int64          `bson:"projectId"`
	Title       string         `bson:"title"`
	Description string         `bson:"description,omitempty"`
	Status      task.Status    `bson:"status"`
	Priority    task.Priority  `bson:"priority"`
	AssignedTo  int64          `bson:"assignedTo,omitempty"`
	CreatedBy   int64          `bson:"createdBy"`
	DueDate     *time.Time     `bson:"dueDate,omitempty"`
	CreatedAt   time.Time      `bson:"createdAt"`
	UpdatedAt   *time.Time     `bson:"updatedAt,omitempty"`
}

func (d document) toTask() task.Task {
	return task.Task{
		ID:          d.ID,
		ProjectID:   d.ProjectID,
		Title:       d.Title,
		Description: d.Description,
		Status:      d.Status,
		Priority:    d.Priority,
		AssignedTo:  d.AssignedTo,
		CreatedBy:   d.CreatedBy,
		DueDate:     d.DueDate,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type Store struct {
	tasks    *mongo.Collection
	counters *mongo.Collection
}

func NewStore(client *mongo.Client) *Store {
	database := client.Database("teamboard")

	return &Store{
		tasks:    database.Collection("tasks"),
		counters: database.Collection("counters"),
	}
}

func (s *Store) Setup(ctx context.Context) error {
	boardIndexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "projectId", Value: 1},
			{Key: "status", Value: 1},
		},
	}

	_, err := s.tasks.Indexes().CreateOne(ctx, boardIndexModel)

	return err
}

// nextID allocates a monotonically increasing task id from the counters
// collection.
func (s *Store) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}

	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "tasks"},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}

	return counter.Seq, nil
}

func (s *Store) Create(ctx context.Context, request task.CreateRequest, createdBy int64) (task.Task, error) {
	id, err := s.nextID(ctx)
	if err != nil {
		return task.Task{}, err
	}

	doc := document{
		ID:          id,
		ProjectID:   request.ProjectID,
		Title:       request.Title,
		Description: request.Description,
		Status:      request.Status,
		Priority:    request.Priority,
		AssignedTo:  request.AssignedTo,
		CreatedBy:   createdBy,
		DueDate:     request.DueDate,
		CreatedAt:   time.Now().UTC(),
	}

	_, err = s.tasks.InsertOne(ctx, doc)
	if err != nil {
		return task.Task{}, err
	}

	return doc.toTask(), nil
}

func (s *Store) Update(ctx context.Context, taskID int64, request task.UpdateRequest) (task.Task, error) {
	now := time.Now().UTC()
	set := bson.M{"updatedAt": now}

	if request.Title != nil {
		set["title"] = *request.Title
	}
	if request.Description != nil {
		set["description"] = *request.Description
	}
	if request.Status != nil {
		set["status"] = *request.Status
	}
	if request.Priority != nil {
		set["priority"] = *request.Priority
	}
	if request.AssignedTo != nil {
		set["assignedTo"] = *request.AssignedTo
	}
	if request.DueDate != nil {
		set["dueDate"] = *request.DueDate
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc document
	err := s.tasks.FindOneAndUpdate(ctx,
		bson.M{"_id": taskID},
		bson.M{"$set": set},
		opts,
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return task.Task{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("task not found"))
	}
	if err != nil {
		return task.Task{}, err
	}

	return doc.toTask(), nil
}

func (s *Store) Get(ctx context.Context, taskID int64) (task.Task, error) {
	var doc document

	err := s.tasks.FindOne(ctx, bson.M{"_id": taskID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return task.Task{}, ierr.New(ierr.ErrorCodeNotFound, errors.New("task not found"))
	}
	if err != nil {
		return task.Task{}, err
	}

	return doc.toTask(), nil
}

func (s *Store) List(ctx context.Context, projectID int64, status task.Status) ([]task.Task, error) {
	filter := bson.M{"projectId": projectID}
	if status != "" {
		filter["status"] = status
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := s.tasks.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	tasks := make([]task.Task, len(docs))
	for i, doc := range docs {
		tasks[i] = doc.toTask()
	}

	return tasks, nil
}
