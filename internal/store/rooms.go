package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/yashraj-ghemud/royal-state/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrInvalidID = errors.New("invalid listing id")
)

// roomDoc mirrors the stored shape. The _id is store-assigned; mapping it to
// the string id on models.Listing happens only here.
type roomDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	District    models.District    `bson:"district,omitempty"`
	Location    string             `bson:"location"`
	Price       int64              `bson:"price"`
	Phone       string             `bson:"phone"`
	Description string             `bson:"description"`
	RoomType    models.RoomType    `bson:"roomType"`
	ImageURL    string             `bson:"imageURL"`
	VideoURL    *string            `bson:"videoURL"`
	OwnerID     string             `bson:"ownerId"`
	OwnerEmail  string             `bson:"ownerEmail"`
	CreatedAt   time.Time          `bson:"createdAt"`
	Status      string             `bson:"status"`
}

func (d *roomDoc) toListing() models.Listing {
	return models.Listing{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		District:    d.District,
		Location:    d.Location,
		Price:       d.Price,
		Phone:       d.Phone,
		Description: d.Description,
		RoomType:    d.RoomType,
		ImageURL:    d.ImageURL,
		VideoURL:    d.VideoURL,
		OwnerID:     d.OwnerID,
		OwnerEmail:  d.OwnerEmail,
		CreatedAt:   d.CreatedAt,
		Status:      d.Status,
	}
}

func fromListing(l *models.Listing) roomDoc {
	return roomDoc{
		Title:       l.Title,
		District:    l.District,
		Location:    l.Location,
		Price:       l.Price,
		Phone:       l.Phone,
		Description: l.Description,
		RoomType:    l.RoomType,
		ImageURL:    l.ImageURL,
		VideoURL:    l.VideoURL,
		OwnerID:     l.OwnerID,
		OwnerEmail:  l.OwnerEmail,
		CreatedAt:   l.CreatedAt,
		Status:      l.Status,
	}
}

type RoomRepository struct {
	coll           *mongo.Collection
	placeholderURL string
	log            *zap.SugaredLogger
}

func NewRoomRepository(coll *mongo.Collection, placeholderURL string, log *zap.SugaredLogger) *RoomRepository {
	// index backing the createdAt-desc ordering of every read
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("createdAt_desc_idx"),
	}
	if _, err := coll.Indexes().CreateOne(context.Background(), idx); err != nil {
		log.Warnw("createdAt index creation failed", "err", err)
	}
	return &RoomRepository{coll: coll, placeholderURL: placeholderURL, log: log}
}

// Add persists a new listing and returns the store-assigned id. The write is
// the single atomic commit point of a submission.
func (r *RoomRepository) Add(ctx context.Context, l *models.Listing) (string, error) {
	doc := fromListing(l)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if doc.Status == "" {
		doc.Status = models.StatusActive
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", errors.New("store returned unexpected id type")
	}
	return oid.Hex(), nil
}

// Delete removes a listing irreversibly. There is no soft delete.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the full listing set newest-first. Documents that fail the
// read-edge validation are dropped with a warning, not surfaced.
func (r *RoomRepository) List(ctx context.Context) ([]models.Listing, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Listing
	for cur.Next(ctx) {
		var doc roomDoc
		if err := cur.Decode(&doc); err != nil {
			r.log.Warnw("dropping undecodable room document", "err", err)
			continue
		}
		l := doc.toListing()
		if err := l.Normalize(r.placeholderURL); err != nil {
			r.log.Warnw("dropping malformed room document", "err", err)
			continue
		}
		out = append(out, l)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Watch opens a change stream over the rooms collection.
func (r *RoomRepository) Watch(ctx context.Context) (*mongo.ChangeStream, error) {
	return r.coll.Watch(ctx, mongo.Pipeline{})
}
