package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"peergrade/internal/model"
)

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database("peergrade")

	reviewRubric := model.Questionnaire{
		ID:               primitive.NewObjectID().Hex(),
		Name:             "Program 2 Review Rubric",
		Type:             model.QuestionnaireReview,
		MinQuestionScore: 0,
		MaxQuestionScore: 5,
		Questions: []model.Question{
			{
				ID:       "q1",
				Seq:      1,
				Type:     model.QuestionCriterion,
				Prompt:   "Does the submission satisfy all stated requirements?",
				Weight:   2,
				Required: true,
			},
			{
				ID:       "q2",
				Seq:      2,
				Type:     model.QuestionCriterion,
				Prompt:   "Is the code well organized and readable?",
				Weight:   1,
				Required: true,
			},
			{
				ID:     "q3",
				Seq:    3,
				Type:   model.QuestionScale,
				Prompt: "Rate the quality of the test suite.",
				Weight: 1,
			},
			{
				ID:     "q4",
				Seq:    4,
				Type:   model.QuestionTextArea,
				Prompt: "What should the authors improve in the next round?",
			},
		},
	}

	teammateRubric := model.Questionnaire{
		ID:               primitive.NewObjectID().Hex(),
		Name:             "Teammate Contribution Rubric",
		Type:             model.QuestionnaireTeammateReview,
		MinQuestionScore: 0,
		MaxQuestionScore: 5,
		Questions: []model.Question{
			{
				ID:       "q1",
				Seq:      1,
				Type:     model.QuestionCriterion,
				Prompt:   "How much did this teammate contribute to the submission?",
				Weight:   1,
				Required: true,
			},
			{
				ID:     "q2",
				Seq:    2,
				Type:   model.QuestionCheckbox,
				Prompt: "Would you work with this teammate again?",
			},
		},
	}

	quiz := model.Questionnaire{
		ID:               primitive.NewObjectID().Hex(),
		Name:             "Team Alpha Quiz",
		Type:             model.QuestionnaireQuiz,
		MinQuestionScore: 0,
		MaxQuestionScore: 1,
		OwnerTeamID:      "team_alpha",
		Questions: []model.Question{
			{
				ID:            "q1",
				Seq:           1,
				Type:          model.QuestionMultipleChoice,
				Prompt:        "Which pattern does our submission use for persistence?",
				Weight:        1,
				Required:      true,
				Choices:       []string{"Active Record", "Repository", "Data Mapper"},
				CorrectChoice: "Repository",
			},
			{
				ID:            "q2",
				Seq:           2,
				Type:          model.QuestionMultipleChoice,
				Prompt:        "How many rounds of review does the assignment run?",
				Weight:        1,
				Required:      true,
				Choices:       []string{"One", "Two", "Three"},
				CorrectChoice: "Two",
			},
		},
	}

	for _, q := range []model.Questionnaire{reviewRubric, teammateRubric, quiz} {
		if err := q.Validate(); err != nil {
			log.Fatalf("Questionnaire %q is invalid: %v", q.Name, err)
		}
		if _, err := db.Collection("questionnaires").InsertOne(ctx, q); err != nil {
			log.Fatalf("Failed to insert questionnaire %q: %v", q.Name, err)
		}
	}

	assignment := model.Assignment{
		ID:              primitive.NewObjectID().Hex(),
		Name:            "Program 2",
		InstructorEmail: "instructor@example.edu",
		TeamReviewing:   true,
		NumRounds:       2,
		CurrentRound:    1,
		Rubrics: []model.AssignmentRubric{
			{QuestionnaireID: reviewRubric.ID, NotificationLimit: 15},
			{QuestionnaireID: teammateRubric.ID, NotificationLimit: 15},
		},
	}
	if _, err := db.Collection("assignments").InsertOne(ctx, assignment); err != nil {
		log.Fatalf("Failed to insert assignment: %v", err)
	}

	mappings := []model.Mapping{
		{
			ID:           primitive.NewObjectID().Hex(),
			Kind:         model.KindReview,
			AssignmentID: assignment.ID,
			ReviewerID:   "student_9001",
			RevieweeID:   "team_alpha",
			ReviewerName: "Ada",
			RevieweeName: "Team Alpha",
			CreatedAt:    time.Now(),
		},
		{
			ID:              primitive.NewObjectID().Hex(),
			Kind:            model.KindTeammateReview,
			AssignmentID:    assignment.ID,
			ReviewerID:      "student_9001",
			RevieweeID:      "student_9002",
			ReviewerName:    "Ada",
			RevieweeName:    "Grace",
			QuestionnaireID: teammateRubric.ID,
			CreatedAt:       time.Now(),
		},
		{
			ID:           primitive.NewObjectID().Hex(),
			Kind:         model.KindQuiz,
			AssignmentID: assignment.ID,
			ReviewerID:   "student_9003",
			RevieweeID:   "team_alpha",
			ReviewerName: "Linus",
			RevieweeName: "Team Alpha",
			CreatedAt:    time.Now(),
		},
	}
	for _, m := range mappings {
		if _, err := db.Collection("mappings").InsertOne(ctx, m); err != nil {
			log.Fatalf("Failed to insert mapping %s: %v", m.ID, err)
		}
	}

	fmt.Printf("Seeded assignment %q with %d questionnaires and %d mappings\n",
		assignment.Name, 3, len(mappings))
}
