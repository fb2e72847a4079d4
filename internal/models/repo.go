package models

import (
	"context"
	"errors"
	"fmt"

	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

const (
	ServicesTable      = "services"
	BookingsTable      = "bookings"
	SubscriptionsTable = "admin_push_subscriptions"
	ProfileTable       = "profiles"
)

// ErrRecordNotFound is returned by every store implementation when a lookup matches no row.
var ErrRecordNotFound = errors.New("record not found")

// SupabaseRepo talks to the hosted store through PostgREST and GoTrue.
type SupabaseRepo struct {
	supabaseClient *supabase.Client
}

func SupabaseNewRepo(supabaseClient *supabase.Client) *SupabaseRepo {
	return &SupabaseRepo{
		supabaseClient: supabaseClient,
	}
}

func postgrestError(op string, status int64, raw []byte, err error) error {
	if status != 0 {
		return fmt.Errorf("%s: postgrest status=%d body=%s: %w", op, status, string(raw), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}

func (mdb *MongodbRepo) GetCollection(ctx context.Context, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, errors.New("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(colName), nil
}

// GormRepo is the direct-Postgres store used when STORE_DRIVER=postgres.
type GormRepo struct {
	db *gorm.DB
}

func GormNewRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{db: db}
}
