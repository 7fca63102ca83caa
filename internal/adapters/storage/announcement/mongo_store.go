package announcement

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domain "futoconnect/internal/domain/announcement"
)

const (
	mongoCollection = "announcements"
	countersName    = "counters"
	stampCounterID  = "announcements.createdAt"
)

// mongoAnnouncement is the persisted document. Field names match the SQL column names.
type mongoAnnouncement struct {
	ID          string `bson:"_id"`
	Title       string `bson:"title"`
	Description string `bson:"description"`
	Category    string `bson:"category"`
	Tag         string `bson:"tag"`
	Time        string `bson:"time"`
	IsUrgent    bool   `bson:"isUrgent"`
	IsRead      bool   `bson:"isRead"`
	IsSaved     bool   `bson:"isSaved"`
	CreatedAt   int64  `bson:"createdAt"` // Unix nanoseconds
}

func (d mongoAnnouncement) toDomain() domain.Announcement {
	return domain.Announcement{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Category:    d.Category,
		Tag:         d.Tag,
		Time:        d.Time,
		IsUrgent:    d.IsUrgent,
		IsRead:      d.IsRead,
		IsSaved:     d.IsSaved,
		CreatedAt:   fromStamp(d.CreatedAt),
	}
}

// MongoStore implements Store using MongoDB.
// createdAt stamps come from a counter document advanced atomically with $max,
// so they stay unique across concurrent writers.
type MongoStore struct {
	coll     *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

// NewMongoStore creates a MongoStore over the given database.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		coll:     db.Collection(mongoCollection),
		counters: db.Collection(countersName),
		now:      time.Now,
	}
}

// ConnectMongo dials uri and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the createdAt ordering index. Safe to call repeatedly.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetUnique(true).SetName("createdAt_desc"),
	})
	return domain.WrapStorage("ensure_indexes", err)
}

func mongoFilter(filter ListFilter) bson.M {
	f := bson.M{}
	if filter.Category != "" {
		f["category"] = filter.Category
	}
	if filter.Tag != "" {
		f["tag"] = filter.Tag
	}
	if filter.Saved != nil {
		f["isSaved"] = *filter.Saved
	}
	if filter.Read != nil {
		f["isRead"] = *filter.Read
	}
	if filter.Urgent != nil {
		f["isUrgent"] = *filter.Urgent
	}
	if filter.Search != "" {
		re := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
		f["$or"] = bson.A{bson.M{"title": re}, bson.M{"description": re}}
	}
	return f
}

// List returns announcements matching the filter, newest first.
func (s *MongoStore) List(ctx context.Context, filter ListFilter) ([]domain.Announcement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}

	cur, err := s.coll.Find(ctx, mongoFilter(filter), opts)
	if err != nil {
		return nil, domain.WrapStorage("list", err)
	}
	defer cur.Close(ctx)

	var docs []mongoAnnouncement
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.WrapStorage("list", err)
	}
	list := make([]domain.Announcement, 0, len(docs))
	for _, d := range docs {
		list = append(list, d.toDomain())
	}
	return list, nil
}

// Count returns the number of announcements matching the filter.
func (s *MongoStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	n, err := s.coll.CountDocuments(ctx, mongoFilter(filter))
	if err != nil {
		return 0, domain.WrapStorage("count", err)
	}
	return int(n), nil
}

// GetByID retrieves an announcement by ID.
func (s *MongoStore) GetByID(ctx context.Context, id string) (domain.Announcement, error) {
	var d mongoAnnouncement
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.Announcement{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Announcement{}, domain.WrapStorage("get", err)
	}
	return d.toDomain(), nil
}

// nextStamp advances the createdAt counter to max(now, last+1) and returns it.
func (s *MongoStore) nextStamp(ctx context.Context) (int64, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "last", Value: bson.D{{Key: "$max", Value: bson.A{
			bson.D{{Key: "$add", Value: bson.A{bson.D{{Key: "$ifNull", Value: bson.A{"$last", int64(0)}}}, int64(1)}}},
			s.now().UnixNano(),
		}}}}}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var counter struct {
		Last int64 `bson:"last"`
	}
	if err := s.counters.FindOneAndUpdate(ctx, bson.M{"_id": stampCounterID}, update, opts).Decode(&counter); err != nil {
		return 0, err
	}
	return counter.Last, nil
}

// Create inserts a new announcement and assigns its createdAt.
func (s *MongoStore) Create(ctx context.Context, value domain.Announcement) (domain.Announcement, error) {
	if err := value.Validate(); err != nil {
		return domain.Announcement{}, err
	}
	stamp, err := s.nextStamp(ctx)
	if err != nil {
		return domain.Announcement{}, domain.WrapStorage("create", err)
	}
	doc := mongoAnnouncement{
		ID:          value.ID,
		Title:       value.Title,
		Description: value.Description,
		Category:    value.Category,
		Tag:         value.Tag,
		Time:        value.Time,
		IsUrgent:    value.IsUrgent,
		IsRead:      value.IsRead,
		IsSaved:     value.IsSaved,
		CreatedAt:   stamp,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return domain.Announcement{}, domain.WrapStorage("create", err)
	}
	value.CreatedAt = fromStamp(stamp)
	return value, nil
}

// Update overwrites the editable fields of an announcement.
func (s *MongoStore) Update(ctx context.Context, id string, edit domain.Edit) error {
	edit = edit.Normalize()
	if err := edit.Validate(); err != nil {
		return err
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"title":       edit.Title,
		"description": edit.Description,
		"category":    edit.Category,
		"tag":         edit.Tag,
		"isUrgent":    edit.IsUrgent,
	}})
	if err != nil {
		return domain.WrapStorage("update", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes an announcement by ID. An absent id is not an error.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	return domain.WrapStorage("delete", err)
}

// MarkRead sets isRead on an announcement.
func (s *MongoStore) MarkRead(ctx context.Context, id string) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"isRead": true}})
	if err != nil {
		return domain.WrapStorage("mark_read", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ToggleSaved negates isSaved server-side and returns the new value.
func (s *MongoStore) ToggleSaved(ctx context.Context, id string) (bool, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{{Key: "isSaved", Value: bson.D{{Key: "$not", Value: bson.A{"$isSaved"}}}}}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d mongoAnnouncement
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, domain.ErrNotFound
	}
	if err != nil {
		return false, domain.WrapStorage("toggle_saved", err)
	}
	return d.IsSaved, nil
}

// Seeded reports whether the collection holds at least one announcement.
func (s *MongoStore) Seeded(ctx context.Context) (bool, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{}, options.Count().SetLimit(1))
	if err != nil {
		return false, domain.WrapStorage("seeded", err)
	}
	return n > 0, nil
}
