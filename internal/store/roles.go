package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yashraj-ghemud/royal-state/internal/models"
)

// RoleRepository keys role records by the provider uid. A missing record
// means the default role, which the session layer applies.
type RoleRepository struct {
	coll *mongo.Collection
}

func NewRoleRepository(coll *mongo.Collection) *RoleRepository {
	return &RoleRepository{coll: coll}
}

type roleDoc struct {
	UID       string      `bson:"_id"`
	Email     string      `bson:"email"`
	Role      models.Role `bson:"role"`
	CreatedAt time.Time   `bson:"createdAt"`
}

// Get point-reads the role for uid. The second return is false when no
// record exists, which is not an error.
func (r *RoleRepository) Get(ctx context.Context, uid string) (models.Role, bool, error) {
	var doc roleDoc
	err := r.coll.FindOne(ctx, bson.M{"_id": uid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.RoleNone, false, nil
		}
		return models.RoleNone, false, err
	}
	return doc.Role, true, nil
}

// Put upserts the role record for uid.
func (r *RoleRepository) Put(ctx context.Context, uid string, rec models.RoleRecord) error {
	doc := roleDoc{UID: uid, Email: rec.Email, Role: rec.Role, CreatedAt: rec.CreatedAt}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": uid}, doc, options.Replace().SetUpsert(true))
	return err
}
