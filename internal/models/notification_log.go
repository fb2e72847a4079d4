package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	NotificationLogColName = "notification_logs"
	notificationLogTTL     = 30 * 24 * time.Hour
)

const (
	KindBookingCreated   = "booking_created"
	KindBookingConfirmed = "booking_confirmed"
	KindDailyDigest      = "daily_digest"

	ChannelWhatsApp     = "whatsapp"
	ChannelPush         = "push"
	ChannelWhatsAppLink = "whatsapp_link"

	DeliverySent     = "sent"
	DeliveryFailed   = "failed"
	DeliverySkipped  = "skipped"
	DeliveryPrepared = "prepared"
)

type NotificationLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BookingID int64              `bson:"booking_id,omitempty" json:"booking_id,omitempty"`
	Kind      string             `bson:"kind" json:"kind"`
	Channel   string             `bson:"channel" json:"channel"`
	To        string             `bson:"to,omitempty" json:"to,omitempty"`
	Message   string             `bson:"message,omitempty" json:"message,omitempty"`
	Status    string             `bson:"status" json:"status"`
	Error     string             `bson:"error,omitempty" json:"error,omitempty"`
	SentAt    time.Time          `bson:"sent_at" json:"sent_at"`
	ExpiresAt time.Time          `bson:"expires_at" json:"-"`
}

type NotificationLogRepo interface {
	RecordNotification(ctx context.Context, entry *NotificationLog) error
	ListNotifications(ctx context.Context, bookingID int64, limit int) ([]*NotificationLog, error)
	EnsureIndexes(ctx context.Context) error
}

// EnsureIndexes creates the TTL index that expires log entries and the booking lookup index.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	col, err := mdb.GetCollection(ctx, NotificationLogColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().
				SetExpireAfterSeconds(0).
				SetName("expires_at_ttl"),
		},
		{
			Keys: bson.D{
				{Key: "booking_id", Value: 1},
				{Key: "sent_at", Value: -1},
			},
			Options: options.Index().SetName("booking_sent_at"),
		},
	}

	if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating notification log indexes: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) RecordNotification(ctx context.Context, entry *NotificationLog) error {
	col, err := mdb.GetCollection(ctx, NotificationLogColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	if entry.SentAt.IsZero() {
		entry.SentAt = time.Now()
	}
	entry.ExpiresAt = entry.SentAt.Add(notificationLogTTL)

	if _, err := col.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("error inserting notification log: %w", err)
	}
	return nil
}

// ListNotifications returns the most recent entries for a booking, newest first.
func (mdb *MongodbRepo) ListNotifications(ctx context.Context, bookingID int64, limit int) ([]*NotificationLog, error) {
	col, err := mdb.GetCollection(ctx, NotificationLogColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "sent_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := col.Find(ctx, bson.M{"booking_id": bookingID}, opts)
	if err != nil {
		return nil, fmt.Errorf("error finding notification logs: %w", err)
	}
	defer cursor.Close(ctx)

	logs := make([]*NotificationLog, 0, limit)
	for cursor.Next(ctx) {
		var entry NotificationLog
		if err := cursor.Decode(&entry); err != nil {
			return nil, fmt.Errorf("error decoding notification log: %w", err)
		}
		logs = append(logs, &entry)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return logs, nil
}

// DiscardNotificationLog is used when no MongoDB is configured.
type DiscardNotificationLog struct{}

func (DiscardNotificationLog) RecordNotification(context.Context, *NotificationLog) error { return nil }

func (DiscardNotificationLog) ListNotifications(context.Context, int64, int) ([]*NotificationLog, error) {
	return []*NotificationLog{}, nil
}

func (DiscardNotificationLog) EnsureIndexes(context.Context) error { return nil }
