package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/mbolis/formbuilder/model"
	"github.com/pkg/errors"
)

// Submit validates required-question coverage, scores the submission when
// the form is a quiz, and persists the response with all its answers in
// one transaction. The returned score is nil for non-quiz forms.
//
// An answer referencing a question outside the form's own set is stored
// but never scored: respondents may hold a stale copy of an edited form.
func (s *Forms) Submit(ctx context.Context, formID int, answers []model.Answer) (*int, error) {
	var isQuiz bool
	err := s.db.QueryRowContext(ctx, `SELECT is_quiz FROM forms WHERE id = ?`, formID).
		Scan(&isQuiz)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "get form")
	}

	questions, err := fetchQuestions(ctx, s.db, formID)
	if err != nil {
		return nil, err
	}

	byQuestion := make(map[int]model.AnswerValue, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.Value
	}

	for _, q := range questions {
		if !q.Required {
			continue
		}
		value, ok := byQuestion[q.ID]
		if !ok || value.IsEmpty() {
			return nil, validationErrorf("Question %d is required", q.ID)
		}
	}

	var score *int
	if isQuiz {
		score = new(int)
		for _, q := range questions {
			if q.CorrectAnswer == nil || q.CorrectAnswer.IsEmpty() {
				continue
			}
			value, ok := byQuestion[q.ID]
			if ok && value.Matches(*q.CorrectAnswer) {
				*score += q.Points
			}
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	var responseID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO responses (form_id, submitted_at, total_score)
		VALUES (?, ?, 0)
		RETURNING id`,
		formID,
		time.Now(),
	).Scan(&responseID)
	if err != nil {
		return nil, errors.Wrap(err, "insert response")
	}

	err = insertAnswers(ctx, tx, responseID, answers)
	if err != nil {
		return nil, err
	}

	if score != nil {
		_, err = tx.ExecContext(ctx, `UPDATE responses SET total_score = ? WHERE id = ?`,
			*score, responseID)
		if err != nil {
			return nil, errors.Wrap(err, "update total score")
		}
	}

	err = tx.Commit()
	if err != nil {
		return nil, errors.Wrap(err, "commit submission")
	}
	return score, nil
}

func insertAnswers(ctx context.Context, tx *sql.Tx, responseID int, answers []model.Answer) error {
	if len(answers) == 0 {
		return nil
	}

	var query strings.Builder
	query.WriteString(`INSERT INTO answers (response_id, question_id, value) VALUES `)

	args := make([]any, 0, len(answers)*3)
	for i, a := range answers {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString("(?, ?, ?)")

		value, err := a.Value.Value()
		if err != nil {
			return errors.Wrap(err, "marshal answer value")
		}
		args = append(args, responseID, a.QuestionID, value)
	}

	_, err := tx.ExecContext(ctx, query.String(), args...)
	return errors.Wrap(err, "insert answers")
}
