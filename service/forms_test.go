package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/mbolis/formbuilder/config"
	"github.com/mbolis/formbuilder/database"
	"github.com/mbolis/formbuilder/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupDB opens a fresh in-memory database with the full schema applied
// and one seeded user. The DSN is keyed by test name so parallel test
// databases never collide.
func setupDB(t *testing.T) (*sql.DB, int) {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	cfg := config.Config{
		DBUrl: fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=on", name),
	}
	db, err := database.Open(cfg)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	var userID int
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash) VALUES ('creator@test.local', 'x')
		RETURNING id`).
		Scan(&userID)
	if err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}

	return db, userID
}

func seedUser(t *testing.T, db *sql.DB, email string) int {
	t.Helper()

	var id int
	err := db.QueryRow(`
		INSERT INTO users (email, password_hash) VALUES (?, 'x')
		RETURNING id`, email).
		Scan(&id)
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return id
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var n int
	err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n)
	if err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}

func answerTo(v model.AnswerValue) *model.AnswerValue {
	return &v
}

func TestPublish(t *testing.T) {
	db, userID := setupDB(t)
	svc := NewForms(db)
	ctx := context.Background()

	form := model.Form{Title: "Customer feedback", Description: "Tell us things", IsQuiz: false}
	questions := []model.Question{
		{Text: "Your name", Type: model.ShortText, Required: true},
		{Text: "Your thoughts", Type: model.LongText},
		{Text: "Rating", Type: model.Dropdown, Options: []string{"1", "2", "3"}},
	}

	formID, err := svc.Publish(ctx, userID, form, questions)
	require.NoError(t, err)
	require.NotZero(t, formID)

	assert.Equal(t, 1, countRows(t, db, "forms"))
	assert.Equal(t, 3, countRows(t, db, "questions"))

	got, gotQuestions, err := svc.Get(ctx, formID, userID)
	require.NoError(t, err)
	assert.Equal(t, "Customer feedback", got.Title)
	assert.True(t, got.IsPublished)
	assert.Equal(t, userID, got.CreatorID)

	require.Len(t, gotQuestions, 3)
	for i, q := range gotQuestions {
		assert.Equal(t, questions[i].Text, q.Text)
		// missing ordinals default to list position
		require.NotNil(t, q.Order)
		assert.Equal(t, i, *q.Order)
	}
	assert.Equal(t, []string{"1", "2", "3"}, gotQuestions[2].Options)
}

func TestPublishValidation(t *testing.T) {
	db, userID := setupDB(t)
	svc := NewForms(db)
	ctx := context.Background()

	tests := []struct {
		name      string
		form      model.Form
		questions []model.Question
	}{
		{
			name: "empty title",
			form: model.Form{Title: "   "},
			questions: []model.Question{
				{Text: "Q1", Type: model.ShortText},
			},
		},
		{
			name: "empty question text",
			form: model.Form{Title: "T"},
			questions: []model.Question{
				{Text: "", Type: model.ShortText},
			},
		},
		{
			name: "unknown question type",
			form: model.Form{Title: "T"},
			questions: []model.Question{
				{Text: "Q1", Type: "file_upload"},
			},
		},
		{
			name: "quiz question without correct answer",
			form: model.Form{Title: "Quiz", IsQuiz: true},
			questions: []model.Question{
				{Text: "2+2?", Type: model.ShortText, Points: 10},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Publish(ctx, userID, tt.form, tt.questions)
			require.Error(t, err)
			assert.True(t, IsValidation(err), "expected a validation error, got %v", err)

			// nothing may reach storage on a rejected publish
			assert.Equal(t, 0, countRows(t, db, "forms"))
			assert.Equal(t, 0, countRows(t, db, "questions"))
		})
	}
}

func TestPublishNormalizesWireTypes(t *testing.T) {
	db, userID := setupDB(t)
	svc := NewForms(db)
	ctx := context.Background()

	formID, err := svc.Publish(ctx, userID, model.Form{Title: "T"}, []model.Question{
		{Text: "Q1", Type: "SHORT_TEXT"},
		{Text: "Q2", Type: "Checkbox"},
	})
	require.NoError(t, err)

	_, questions, err := svc.Get(ctx, formID, userID)
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, model.ShortText, questions[0].Type)
	assert.Equal(t, model.Checkbox, questions[1].Type)
}

func TestPublishAllOrNothing(t *testing.T) {
	db, userID := setupDB(t)
	svc := NewForms(db)
	ctx := context.Background()

	// sabotage the question insert: the form row must not survive
	_, err := db.Exec(`DROP TABLE questions`)
	require.NoError(t, err)

	_, err = svc.Publish(ctx, userID, model.Form{Title: "T"}, []model.Question{
		{Text: "Q1", Type: model.ShortText},
	})
	require.Error(t, err)
	assert.False(t, IsValidation(err))

	assert.Equal(t, 0, countRows(t, db, "forms"))
}

func TestUpdateReplacesQuestions(t *testing.T) {
	db, userID := setupDB(t)
	svc := NewForms(db)
	ctx := context.Background()

	formID, err := svc.Publish(ctx, userID, model.Form{Title: "Before"}, []model.Question{
		{Text: "Old 1", Type: model.ShortText},
		{Text: "Old 2", Type: model.ShortText},
	})
	require.NoError(t, err)

	err = svc.Update(ctx, formID, userID, model.Form{Title: "After", IsQuiz: false}, []model.Question{
		{Text: "New 1", Type: model.LongText},
	})
	require.NoError(t, err)

	form, questions, err := svc.Get(ctx, formID, userID)
	require.NoError(t, err)
	assert.Equal(t, "After", form.Title)
	require.Len(t, questions, 1)
	assert.Equal(t, "New 1", questions[0].Text)
	assert.Equal(t, 1, countRows(t, db, "questions"))
}

func TestUpdateIdempotent(t *testing.T) {
	db, userID := setupDB(t)
	svc := NewForms(db)
	ctx := context.Background()

	formID, err := svc.Publish(ctx, userID, model.Form{Title: "T"}, []model.Question{
		{Text: "Q1", Type: model.ShortText},
	})
	require.NoError(t, err)

	payload := []model.Question{
		{Text: "A", Type: model.ShortText},
		{Text: "B", Type: model.Dropdown, Options: []string{"x", "y"}},
	}

	snapshot := func() []model.Question {
		_, questions, err := svc.Get(ctx, formID, userID)
		require.NoError(t, err)
		// ids change across replace; compare content only
		for i := range questions {
			questions[i].ID = 0
		}
		return questions
	}

	err = svc.Update(ctx, formID, userID, model.Form{Title: "T"}, payload)
	require.NoError(t, err)
	first := snapshot()

	err = svc.Update(ctx, formID, userID, model.Form{Title: "T"}, payload)
	require.NoError(t, err)
	second := snapshot()

	assert.Equal(t, first, second)
	assert.Equal(t, 2, countRows(t, db, "questions"))
}

func TestUpdateOwnership(t *testing.T) {
	db, userID := setupDB(t)
	svc := NewForms(db)
	ctx := context.Background()

	formID, err := svc.Publish(ctx, userID, model.Form{Title: "Mine"}, []model.Question{
		{Text: "Q1", Type: model.ShortText},
	})
	require.NoError(t, err)

	intruderID := seedUser(t, db, "intruder@test.local")

	err = svc.Update(ctx, formID, intruderID, model.Form{Title: "Stolen"}, nil)
	assert.ErrorIs(t, err, ErrNotOwner)

	// prior state intact
	form, questions, err := svc.Get(ctx, formID, userID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", form.Title)
	assert.Len(t, questions, 1)

	err = svc.Update(ctx, 99999, userID, model.Form{Title: "X"}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemovesQuestionsAndResponses(t *testing.T) {
	db, userID := setupDB(t)
	svc := NewForms(db)
	ctx := context.Background()

	formID, err := svc.Publish(ctx, userID, model.Form{Title: "T"}, []model.Question{
		{Text: "Q1", Type: model.ShortText},
	})
	require.NoError(t, err)

	_, questions, err := svc.Get(ctx, formID, userID)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, formID, []model.Answer{
		{QuestionID: questions[0].ID, Value: model.Scalar("hello")},
	})
	require.NoError(t, err)

	intruderID := seedUser(t, db, "intruder@test.local")
	err = svc.Delete(ctx, formID, intruderID)
	assert.ErrorIs(t, err, ErrNotOwner)

	err = svc.Delete(ctx, formID, userID)
	require.NoError(t, err)

	assert.Equal(t, 0, countRows(t, db, "forms"))
	assert.Equal(t, 0, countRows(t, db, "questions"))
	assert.Equal(t, 0, countRows(t, db, "responses"))
	assert.Equal(t, 0, countRows(t, db, "answers"))
}

func TestListForms(t *testing.T) {
	db, userID := setupDB(t)
	svc := NewForms(db)
	ctx := context.Background()

	otherID := seedUser(t, db, "other@test.local")

	mineID, err := svc.Publish(ctx, userID, model.Form{Title: "Mine"}, []model.Question{
		{Text: "Q1", Type: model.ShortText},
	})
	require.NoError(t, err)
	_, err = svc.Publish(ctx, otherID, model.Form{Title: "Theirs"}, []model.Question{
		{Text: "Q1", Type: model.ShortText},
	})
	require.NoError(t, err)

	_, err = svc.Submit(ctx, mineID, nil)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, mineID, nil)
	require.NoError(t, err)

	forms, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	assert.Equal(t, "Mine", forms[0].Title)
	assert.Equal(t, 2, forms[0].ResponseCount)
}

func TestPublicGetHidesAnswers(t *testing.T) {
	db, userID := setupDB(t)
	svc := NewForms(db)
	ctx := context.Background()

	formID, err := svc.Publish(ctx, userID, model.Form{Title: "Quiz", IsQuiz: true}, []model.Question{
		{
			Text:          "2+2?",
			Type:          model.ShortText,
			Points:        10,
			CorrectAnswer: answerTo(model.Scalar("4")),
		},
	})
	require.NoError(t, err)

	_, questions, err := svc.PublicGet(ctx, formID)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Nil(t, questions[0].CorrectAnswer)
	assert.Zero(t, questions[0].Points)

	_, _, err = svc.PublicGet(ctx, 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}
