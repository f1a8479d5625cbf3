// Package mongo provides a MongoDB-backed storage driver. Each entity is one
// document in the collection.
package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/papercomputeco/ndbprep/pkg/storage"
	"github.com/papercomputeco/ndbprep/pkg/wikidata"
)

const idField = "wikidata_id"

// Driver implements storage.Driver over a MongoDB collection. Inserts are
// append-only: repeated ids become separate documents.
type Driver struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewDriver connects to uri and ensures an index on wikidata_id.
func NewDriver(ctx context.Context, uri, database, collection string) (*Driver, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: idField, Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &Driver{client: client, collection: coll}, nil
}

func (d *Driver) InsertMany(ctx context.Context, entities []*wikidata.Entity) error {
	if err := storage.CheckBatch(entities); err != nil {
		return err
	}

	docs := make([]any, 0, len(entities))
	for _, e := range entities {
		doc, err := toDocument(e)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	if _, err := d.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return fmt.Errorf("inserting entities: %w", err)
	}
	return nil
}

// Get returns the newest document for the id. ObjectIDs grow with insertion
// time, so sorting on _id descending finds it.
func (d *Driver) Get(ctx context.Context, wikidataID string) (*wikidata.Entity, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: -1}})

	var doc bson.M
	err := d.collection.FindOne(ctx, bson.M{idField: wikidataID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.NotFoundError{ID: wikidataID}
		}
		return nil, fmt.Errorf("finding entity: %w", err)
	}

	return fromDocument(doc)
}

func (d *Driver) Count(ctx context.Context) (int, error) {
	n, err := d.collection.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("counting entities: %w", err)
	}
	return int(n), nil
}

func (d *Driver) Close() error {
	return d.client.Disconnect(context.Background())
}

// toDocument converts the entity through its JSON form so the raw claim
// values are stored as native BSON rather than opaque bytes.
func toDocument(e *wikidata.Entity) (bson.D, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", e.WikidataID, err)
	}

	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, fmt.Errorf("converting %s to bson: %w", e.WikidataID, err)
	}
	return doc, nil
}

func fromDocument(doc bson.M) (*wikidata.Entity, error) {
	delete(doc, "_id")

	data, err := bson.MarshalExtJSON(doc, false, false)
	if err != nil {
		return nil, fmt.Errorf("converting document to json: %w", err)
	}

	var e wikidata.Entity
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decoding entity: %w", err)
	}
	return &e, nil
}
