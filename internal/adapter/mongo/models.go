package mongo

import (
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/domain/entity"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// listingDocument is the stored shape of a listing. ExpiresAt is kept raw
// because the mobile clients wrote it inconsistently over time: BSON datetime,
// ISO-8601 string, or epoch seconds. decodeExpiry normalizes all of them.
type listingDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	SellerID    string             `bson:"seller_id"`
	SellerEmail string             `bson:"seller_email,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description,omitempty"`
	MinePrice   float64            `bson:"mine_price"`
	StealPrice  float64            `bson:"steal_price"`
	LockPrice   float64            `bson:"lock_price"`
	Status      string             `bson:"status"`
	ExpiresAt   bson.RawValue      `bson:"expires_at"`
	LockedBy    string             `bson:"locked_by,omitempty"`
	LockedAt    time.Time          `bson:"locked_at,omitempty"`
	Winner      *entity.Winner     `bson:"winner,omitempty"`
	ExpiredAt   time.Time          `bson:"expired_at,omitempty"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

var expiryStringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

func decodeExpiry(raw bson.RawValue) (time.Time, error) {
	switch raw.Type {
	case bsontype.DateTime:
		return raw.Time().UTC(), nil
	case bsontype.String:
		s := raw.StringValue()
		for _, layout := range expiryStringLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable expiry string %q", s)
	case bsontype.Int32:
		return time.Unix(int64(raw.Int32()), 0).UTC(), nil
	case bsontype.Int64:
		return time.Unix(raw.Int64(), 0).UTC(), nil
	case bsontype.Double:
		sec := int64(raw.Double())
		return time.Unix(sec, 0).UTC(), nil
	case bsontype.EmbeddedDocument:
		// Firestore-style {seconds, nanoseconds} wrapper.
		var ts struct {
			Seconds     int64 `bson:"seconds"`
			Nanoseconds int32 `bson:"nanoseconds"`
		}
		if err := raw.Unmarshal(&ts); err != nil {
			return time.Time{}, fmt.Errorf("unparseable expiry document: %w", err)
		}
		return time.Unix(ts.Seconds, int64(ts.Nanoseconds)).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported expiry type %s", raw.Type)
	}
}

// toEntity maps a stored listing onto the domain entity. An unparseable
// expiry maps to the zero time; callers treat that as "skip and log", not an
// error, so one bad document cannot poison a sweep.
func (d *listingDocument) toEntity() *entity.Listing {
	expiresAt, err := decodeExpiry(d.ExpiresAt)
	if err != nil {
		expiresAt = time.Time{}
	}
	return &entity.Listing{
		ID:          d.ID.Hex(),
		SellerID:    d.SellerID,
		SellerEmail: d.SellerEmail,
		Title:       d.Title,
		Description: d.Description,
		MinePrice:   d.MinePrice,
		StealPrice:  d.StealPrice,
		LockPrice:   d.LockPrice,
		Status:      entity.ListingStatus(d.Status),
		ExpiresAt:   expiresAt,
		LockedBy:    d.LockedBy,
		LockedAt:    d.LockedAt,
		Winner:      d.Winner,
		ExpiredAt:   d.ExpiredAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type actionDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ListingID string             `bson:"listing_id"`
	ActorID   string             `bson:"actor_id"`
	ActorName string             `bson:"actor_name"`
	Kind      string             `bson:"kind"`
	Details   string             `bson:"details"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (d *actionDocument) toEntity() *entity.Action {
	return &entity.Action{
		ID:        d.ID.Hex(),
		ListingID: d.ListingID,
		ActorID:   d.ActorID,
		ActorName: d.ActorName,
		Kind:      entity.ActionKindFromString(d.Kind),
		Details:   d.Details,
		CreatedAt: d.CreatedAt,
	}
}
