package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"taskdeck/internal/task"
)

// MongoStore keeps each user's tasks in a collection of their own, named
// after the collection path (users.{uid}.tasks). Subtask mutations use
// array operators so concurrent writers do not overwrite each other.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is empty")
	}
	if database == "" {
		return nil, errors.New("mongo database is empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, unavailable("connect", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, unavailable("ping", err)
	}
	return &MongoStore{
		client: client,
		db:     client.Database(database),
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) collection(uid string) (*mongo.Collection, error) {
	path, err := CollectionPath(uid)
	if err != nil {
		return nil, err
	}
	return s.db.Collection(strings.ReplaceAll(path, "/", ".")), nil
}

func (s *MongoStore) ListTasks(ctx context.Context, uid string, f task.Filter) ([]task.Task, error) {
	col, err := s.collection(uid)
	if err != nil {
		return nil, err
	}
	filter := bson.M{}
	if f.PendingOnly {
		filter["completed"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, unavailable("list tasks", err)
	}
	var docs []document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, unavailable("list tasks", err)
	}
	tasks := make([]task.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, d.toTask())
	}
	return tasks, nil
}

func (s *MongoStore) CreateTask(ctx context.Context, uid string, f task.Fields) (string, error) {
	f, err := f.Normalize()
	if err != nil {
		return "", err
	}
	col, err := s.collection(uid)
	if err != nil {
		return "", err
	}
	id := primitive.NewObjectID().Hex()
	if _, err := col.InsertOne(ctx, fromTask(f.New(id, s.now()))); err != nil {
		return "", unavailable("create task", err)
	}
	return id, nil
}

func (s *MongoStore) UpdateTask(ctx context.Context, uid, id string, p task.Patch) error {
	if err := p.Validate(); err != nil {
		return err
	}
	set := bson.M{"updatedAt": s.now()}
	if p.Title != nil {
		set["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Text != nil {
		set["text"] = strings.TrimSpace(*p.Text)
	}
	if p.Priority != nil {
		set["priority"] = string(*p.Priority)
	}
	if p.Completed != nil {
		set["completed"] = *p.Completed
	}
	update := bson.M{"$set": set}
	switch {
	case p.ClearDueDate:
		update["$unset"] = bson.M{"dueDate": ""}
	case p.DueDate != nil:
		set["dueDate"] = *p.DueDate
	}
	return s.updateOne(ctx, uid, id, bson.M{}, update, "update task")
}

func (s *MongoStore) SetCompleted(ctx context.Context, uid, id string, completed bool) error {
	return s.UpdateTask(ctx, uid, id, task.Patch{Completed: &completed})
}

func (s *MongoStore) DeleteTask(ctx context.Context, uid, id string) error {
	col, err := s.collection(uid)
	if err != nil {
		return err
	}
	if err := validateSegment("task id", id); err != nil {
		return err
	}
	if _, err := col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return unavailable("delete task", err)
	}
	return nil
}

func (s *MongoStore) AppendSubtask(ctx context.Context, uid, taskID string, sub task.Subtask) error {
	if strings.TrimSpace(sub.ID) == "" {
		return fmt.Errorf("%w: subtask id is empty", task.ErrValidation)
	}
	text, err := task.ValidateSubtaskText(sub.Text)
	if err != nil {
		return err
	}
	sub.Text = text
	update := bson.M{
		"$push": bson.M{"subtasks": subtaskDoc(sub)},
		"$set":  bson.M{"updatedAt": s.now()},
	}
	err = s.updateOne(ctx, uid, taskID, bson.M{"subtasks.id": bson.M{"$ne": sub.ID}}, update, "append subtask")
	if !errors.Is(err, task.ErrNotFound) {
		return err
	}
	exists, cerr := s.exists(ctx, uid, taskID)
	if cerr != nil {
		return cerr
	}
	if exists {
		return fmt.Errorf("%w: duplicate subtask id %s", task.ErrValidation, sub.ID)
	}
	return err
}

// RemoveSubtask is a no-op when the subtask is already absent.
func (s *MongoStore) RemoveSubtask(ctx context.Context, uid, taskID, subtaskID string) error {
	update := bson.M{
		"$pull": bson.M{"subtasks": bson.M{"id": subtaskID}},
		"$set":  bson.M{"updatedAt": s.now()},
	}
	err := s.updateOne(ctx, uid, taskID, bson.M{"subtasks.id": subtaskID}, update, "remove subtask")
	if !errors.Is(err, task.ErrNotFound) {
		return err
	}
	exists, cerr := s.exists(ctx, uid, taskID)
	if cerr != nil {
		return cerr
	}
	if exists {
		return nil
	}
	return err
}

func (s *MongoStore) UpdateSubtaskText(ctx context.Context, uid, taskID, subtaskID, text string) error {
	text, err := task.ValidateSubtaskText(text)
	if err != nil {
		return err
	}
	update := bson.M{"$set": bson.M{"subtasks.$.text": text, "updatedAt": s.now()}}
	return s.updateOne(ctx, uid, taskID, bson.M{"subtasks.id": subtaskID}, update, "update subtask")
}

func (s *MongoStore) SetSubtaskCompleted(ctx context.Context, uid, taskID, subtaskID string, completed bool) error {
	update := bson.M{"$set": bson.M{"subtasks.$.completed": completed, "updatedAt": s.now()}}
	return s.updateOne(ctx, uid, taskID, bson.M{"subtasks.id": subtaskID}, update, "update subtask")
}

// updateOne applies update to the task matching id and extra. No match is
// reported as ErrNotFound.
func (s *MongoStore) updateOne(ctx context.Context, uid, id string, extra bson.M, update bson.M, op string) error {
	col, err := s.collection(uid)
	if err != nil {
		return err
	}
	if err := validateSegment("task id", id); err != nil {
		return err
	}
	filter := bson.M{"_id": id}
	for k, v := range extra {
		filter[k] = v
	}
	res, err := col.UpdateOne(ctx, filter, update)
	if err != nil {
		return unavailable(op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: users/%s/tasks/%s", task.ErrNotFound, uid, id)
	}
	return nil
}

func (s *MongoStore) exists(ctx context.Context, uid, id string) (bool, error) {
	col, err := s.collection(uid)
	if err != nil {
		return false, err
	}
	n, err := col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, unavailable("count tasks", err)
	}
	return n > 0, nil
}
