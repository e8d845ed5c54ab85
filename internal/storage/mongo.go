package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shopfront/pricegrab/internal/types"
)

// Mongo is the optional document-database backend. Collection names match
// what the storefront already uses: prices, products, and "shop" for
// accounts.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// NewMongo connects to MongoDB and verifies the connection.
func NewMongo(uri, database string, logger *slog.Logger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &Mongo{
		client: client,
		db:     client.Database(database),
		logger: logger.With("component", "mongo_storage"),
	}, nil
}

// Close disconnects from MongoDB.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// Prices returns the price store over the prices collection.
func (m *Mongo) Prices() PriceStore {
	return &mongoPriceStore{coll: m.db.Collection("prices"), logger: m.logger}
}

// Products returns the product store over the products collection.
func (m *Mongo) Products() ProductStore {
	return &mongoProductStore{coll: m.db.Collection("products"), logger: m.logger}
}

// Users returns the user store over the shop collection.
func (m *Mongo) Users() UserStore {
	return &mongoUserStore{coll: m.db.Collection("shop"), logger: m.logger}
}

func mongoErr(err error) error {
	return &types.StoreError{Backend: "mongodb", Err: err}
}

// --- Price store ---

// mongoPriceStore stores records as flat documents. Timestamps are kept as
// RFC 3339 strings so file and mongo backends serialize records the same
// way and records can move between them.
type mongoPriceStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

func (s *mongoPriceStore) ReadAll(ctx context.Context) ([]types.PriceRecord, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, mongoErr(err)
	}
	defer cursor.Close(ctx)

	var records []types.PriceRecord
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, mongoErr(err)
		}
		records = append(records, recordFromDoc(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, mongoErr(err)
	}
	return records, nil
}

func (s *mongoPriceStore) Get(ctx context.Context, priceID string) (types.PriceRecord, error) {
	var doc bson.M
	err := s.coll.FindOne(ctx, bson.M{"priceId": priceID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return types.PriceRecord{}, types.ErrRecordNotFound
	}
	if err != nil {
		return types.PriceRecord{}, mongoErr(err)
	}
	return recordFromDoc(doc), nil
}

func (s *mongoPriceStore) Upsert(ctx context.Context, rec types.PriceRecord) (types.PriceRecord, error) {
	if rec.Price != "" && !rec.HasPrice() {
		return types.PriceRecord{}, types.ErrInvalidPrice
	}

	now := time.Now().UTC().Truncate(time.Second)
	saved := rec

	if rec.PriceID != "" {
		existing, err := s.Get(ctx, rec.PriceID)
		if err != nil && !errors.Is(err, types.ErrRecordNotFound) {
			return types.PriceRecord{}, err
		}
		if err == nil {
			existing.Merge(rec)
			saved = existing
		}
	} else {
		saved.PriceID = uuid.NewString()
	}
	saved.CapturedAt = now

	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"priceId": saved.PriceID}, saved.ToMap(), opts); err != nil {
		return types.PriceRecord{}, mongoErr(err)
	}

	s.logger.Debug("price record stored", "price_id", saved.PriceID, "url", saved.SourceURL)
	return saved, nil
}

func (s *mongoPriceStore) Delete(ctx context.Context, priceID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"priceId": priceID})
	if err != nil {
		return mongoErr(err)
	}
	if res.DeletedCount == 0 {
		return types.ErrRecordNotFound
	}
	return nil
}

func recordFromDoc(doc bson.M) types.PriceRecord {
	delete(doc, "_id")
	return types.FromMap(doc)
}

// --- Product store ---

type mongoProductStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

func (s *mongoProductStore) All(ctx context.Context) ([]types.Product, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, mongoErr(err)
	}
	defer cursor.Close(ctx)

	var products []types.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, mongoErr(err)
	}
	return products, nil
}

func (s *mongoProductStore) Get(ctx context.Context, id int64) (types.Product, error) {
	var p types.Product
	err := s.coll.FindOne(ctx, bson.M{"id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return types.Product{}, types.ErrProductNotFound
	}
	if err != nil {
		return types.Product{}, mongoErr(err)
	}
	return p, nil
}

func (s *mongoProductStore) Create(ctx context.Context, p types.Product) (types.Product, error) {
	if p.ID == 0 {
		var last types.Product
		opts := options.FindOne().SetSort(bson.M{"id": -1})
		err := s.coll.FindOne(ctx, bson.M{}, opts).Decode(&last)
		if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return types.Product{}, mongoErr(err)
		}
		p.ID = last.ID + 1
	}

	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		return types.Product{}, mongoErr(err)
	}
	return p, nil
}

func (s *mongoProductStore) Update(ctx context.Context, p types.Product) (types.Product, error) {
	if p.Views == 0 {
		existing, err := s.Get(ctx, p.ID)
		if err != nil {
			return types.Product{}, err
		}
		p.Views = existing.Views
	}

	res, err := s.coll.ReplaceOne(ctx, bson.M{"id": p.ID}, p)
	if err != nil {
		return types.Product{}, mongoErr(err)
	}
	if res.MatchedCount == 0 {
		return types.Product{}, types.ErrProductNotFound
	}
	return p, nil
}

func (s *mongoProductStore) Delete(ctx context.Context, id int64) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return mongoErr(err)
	}
	if res.DeletedCount == 0 {
		return types.ErrProductNotFound
	}
	return nil
}

func (s *mongoProductStore) IncrementViews(ctx context.Context, id int64) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p types.Product
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"id": id}, bson.M{"$inc": bson.M{"views": 1}}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, types.ErrProductNotFound
	}
	if err != nil {
		return 0, mongoErr(err)
	}
	return p.Views, nil
}

func (s *mongoProductStore) Search(ctx context.Context, query string, limit int) ([]types.Product, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"name": bson.M{"$regex": query, "$options": "i"}},
		bson.M{"description": bson.M{"$regex": query, "$options": "i"}},
	}}

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mongoErr(err)
	}
	defer cursor.Close(ctx)

	var products []types.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, mongoErr(err)
	}
	return products, nil
}

// --- User store ---

type mongoUserStore struct {
	coll   *mongo.Collection
	logger *slog.Logger
}

func (s *mongoUserStore) Get(ctx context.Context, username string) (types.User, error) {
	var u types.User
	err := s.coll.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return types.User{}, types.ErrUserNotFound
	}
	if err != nil {
		return types.User{}, mongoErr(err)
	}
	return u, nil
}

func (s *mongoUserStore) Create(ctx context.Context, u types.User) error {
	err := s.coll.FindOne(ctx, bson.M{"username": u.Username}).Err()
	if err == nil {
		return types.ErrUserExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return mongoErr(err)
	}

	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		return mongoErr(err)
	}
	return nil
}
