package db

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"time"

	"pitchhub/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var MongoClient *mongo.Client
var MongoDatabase *mongo.Database
var SessionCollection *mongo.Collection
var ReportCollection *mongo.Collection
var ObjectionCollection *mongo.Collection

// GetCollection returns a collection by name
func GetCollection(collectionName string) *mongo.Collection {
	return MongoDatabase.Collection(collectionName)
}

// extractDBName parses the database name from the URI, defaulting to "pitchhub"
func extractDBName(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return "pitchhub"
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:] // Trim leading '/'
	}
	return "pitchhub"
}

// ConnectMongoDB establishes a connection to MongoDB using the provided URI
func ConnectMongoDB(uri string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection with a ping
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoClient = client
	dbName := extractDBName(uri)
	log.Printf("Using database: %s", dbName)

	MongoDatabase = client.Database(dbName)
	SessionCollection = MongoDatabase.Collection("simulation_sessions")
	ReportCollection = MongoDatabase.Collection("simulation_reports")
	ObjectionCollection = MongoDatabase.Collection("objection_templates")
	return nil
}

// CreateSession inserts a new simulation session and returns its id.
func CreateSession(ctx context.Context, session *models.Session) (string, error) {
	if SessionCollection == nil {
		return "", fmt.Errorf("database not initialized")
	}

	if session.ID.IsZero() {
		session.ID = primitive.NewObjectID()
	}
	result, err := SessionCollection.InsertOne(ctx, session)
	if err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type")
	}
	session.ID = id
	return id.Hex(), nil
}

// UpdateSession applies a partial $set update to a session document.
func UpdateSession(ctx context.Context, sessionID string, fields bson.M) error {
	if SessionCollection == nil {
		return fmt.Errorf("database not initialized")
	}

	id, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return fmt.Errorf("invalid session id: %w", err)
	}
	_, err = SessionCollection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// FindSessionByID loads a session with its embedded conversation turns.
func FindSessionByID(ctx context.Context, sessionID string) (*models.Session, error) {
	if SessionCollection == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	id, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var session models.Session
	if err := SessionCollection.FindOne(ctx, bson.M{"_id": id}).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return &session, nil
}

// AddConversationTurn appends a turn to the session's embedded transcript.
func AddConversationTurn(ctx context.Context, sessionID string, turn models.ConversationTurn) error {
	if SessionCollection == nil {
		return fmt.Errorf("database not initialized")
	}

	id, err := primitive.ObjectIDFromHex(sessionID)
	if err != nil {
		return fmt.Errorf("invalid session id: %w", err)
	}
	_, err = SessionCollection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"conversationTurns": turn}},
	)
	if err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	return nil
}

// UpsertReport stores the end-of-session report keyed by session id. A repeat
// call replaces the previous report instead of duplicating it.
func UpsertReport(ctx context.Context, report *models.EvaluationResult) error {
	if ReportCollection == nil {
		return fmt.Errorf("database not initialized")
	}

	now := time.Now()
	filter := bson.M{"sessionId": report.SessionID}
	update := bson.M{
		"$set": bson.M{
			"overallScore":        report.OverallScore,
			"grade":               report.Grade,
			"summary":             report.Summary,
			"skills":              report.Skills,
			"conversationMetrics": report.Metrics,
			"highlights":          report.Highlights,
			"improvementAreas":    report.ImprovementAreas,
			"recommendations":     report.Recommendations,
			"updatedAt":           now,
		},
		"$setOnInsert": bson.M{
			"sessionId": report.SessionID,
			"createdAt": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := ReportCollection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert report: %w", err)
	}
	return nil
}

// FindReportBySessionID loads a stored report, if any.
func FindReportBySessionID(ctx context.Context, sessionID string) (*models.EvaluationResult, error) {
	if ReportCollection == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	var report models.EvaluationResult
	err := ReportCollection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&report)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	return &report, nil
}

// FindObjectionTemplates returns catalog objections for a scenario type.
func FindObjectionTemplates(ctx context.Context, scenarioType string) ([]models.GeneratedObjection, error) {
	if ObjectionCollection == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	cursor, err := ObjectionCollection.Find(ctx, bson.M{"scenarioType": scenarioType})
	if err != nil {
		return nil, fmt.Errorf("failed to query objection templates: %w", err)
	}
	defer cursor.Close(ctx)

	var templates []models.GeneratedObjection
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, fmt.Errorf("failed to decode objection templates: %w", err)
	}
	return templates, nil
}

// CountObjectionTemplates reports how many catalog entries exist.
func CountObjectionTemplates(ctx context.Context) (int64, error) {
	if ObjectionCollection == nil {
		return 0, fmt.Errorf("database not initialized")
	}
	return ObjectionCollection.CountDocuments(ctx, bson.M{})
}

// InsertObjectionTemplates bulk-inserts catalog entries.
func InsertObjectionTemplates(ctx context.Context, templates []models.GeneratedObjection) error {
	if ObjectionCollection == nil {
		return fmt.Errorf("database not initialized")
	}

	docs := make([]interface{}, len(templates))
	for i, t := range templates {
		docs[i] = t
	}
	if _, err := ObjectionCollection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to seed objection templates: %w", err)
	}
	return nil
}
