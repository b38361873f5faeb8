package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	RatingsCollection       = "ratings"
	MatchesCollection       = "matches"
	TutorProfilesCollection = "tutor_profiles"

	migrationsCollection = "migrations"

	// RatingUniqueIndex enforces one rating per party per match.
	RatingUniqueIndex = "match_rater_unique"
)

type Migration struct {
	Version     int
	Description string
	Up          func(context.Context, *mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
	log        logrus.FieldLogger
}

func NewMigrator(db *mongo.Database, log logrus.FieldLogger) *Migrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
		log:        log,
	}
}

func (m *Migrator) Up(ctx context.Context) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}

		m.log.WithField("version", migration.Version).Infof("Running migration: %s", migration.Description)

		if err := migration.Up(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if err := m.updateVersion(ctx, migration.Version); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) getCurrentVersion(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection(migrationsCollection).FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, err
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(ctx context.Context, version int) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := m.db.Collection(migrationsCollection).ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)

	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create ratings collection with indexes",
			Up:          createRatingsIndexes,
		},
		{
			Version:     2,
			Description: "Create matches indexes",
			Up:          createMatchesIndexes,
		},
		{
			Version:     3,
			Description: "Create tutor_profiles indexes",
			Up:          createTutorProfilesIndexes,
		},
	}
}

// RatingIndexes is exported so the index set can be asserted without a server.
func RatingIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "match_id", Value: 1},
				{Key: "rated_by", Value: 1},
				{Key: "rater_type", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName(RatingUniqueIndex),
		},
		{
			Keys: bson.D{
				{Key: "rated_user", Value: 1},
				{Key: "rater_type", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "match_id", Value: 1}},
		},
	}
}

func createRatingsIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(RatingsCollection).Indexes().CreateMany(ctx, RatingIndexes())
	return err
}

func createMatchesIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "parent_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "tutor_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	}

	_, err := db.Collection(MatchesCollection).Indexes().CreateMany(ctx, indexes)
	return err
}

func createTutorProfilesIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "average_rating", Value: -1}},
		},
	}

	_, err := db.Collection(TutorProfilesCollection).Indexes().CreateMany(ctx, indexes)
	return err
}
