package repository

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"mathqc/internal/model"
)

type QuestionRepo interface {
	// Basic CRUD Operations
	Create(ctx context.Context, question *model.Question) error
	GetByID(ctx context.Context, id string) (*model.Question, error)
	Update(ctx context.Context, question *model.Question) error
	Delete(ctx context.Context, id string) error

	// Batch Verification Support
	GetByIDs(ctx context.Context, ids []string) ([]*model.Question, error)
	GetByGrade(ctx context.Context, grade int) ([]*model.Question, error)
	GetByDomain(ctx context.Context, domain string) ([]*model.Question, error)

	// Management Methods
	GetAll(ctx context.Context) ([]*model.Question, error)
}

type questionRepo struct {
	collection *mongo.Collection
}

func NewQuestionRepo(client *mongo.Client) QuestionRepo {
	db := client.Database("mathqc")
	return &questionRepo{
		collection: db.Collection("questions"),
	}
}

func (r *questionRepo) Create(ctx context.Context, question *model.Question) error {
	// Question ids are UUID strings, not ObjectIDs
	if question.ID == "" {
		question.ID = uuid.NewString()
	}

	_, err := r.collection.InsertOne(ctx, question)
	if err != nil {
		return err
	}

	return nil
}

func (r *questionRepo) GetByID(ctx context.Context, id string) (*model.Question, error) {
	var question model.Question
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Question not found
		}
		return nil, err
	}

	return &question, nil
}

func (r *questionRepo) Update(ctx context.Context, question *model.Question) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": question.ID}, question)
	return err
}

func (r *questionRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (r *questionRepo) GetByIDs(ctx context.Context, ids []string) ([]*model.Question, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*model.Question
	if err = cursor.All(ctx, &questions); err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepo) GetByGrade(ctx context.Context, grade int) ([]*model.Question, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"grade": grade})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*model.Question
	if err = cursor.All(ctx, &questions); err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepo) GetByDomain(ctx context.Context, domain string) ([]*model.Question, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"domain": domain})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*model.Question
	if err = cursor.All(ctx, &questions); err != nil {
		return nil, err
	}

	return questions, nil
}

func (r *questionRepo) GetAll(ctx context.Context) ([]*model.Question, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questions []*model.Question
	if err = cursor.All(ctx, &questions); err != nil {
		return nil, err
	}

	return questions, nil
}
