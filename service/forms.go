package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/mbolis/formbuilder/model"
	"github.com/pkg/errors"
)

// Forms owns the transactional form lifecycle: publish, full-replace
// update, delete, and the read paths backing the dashboard and editor.
type Forms struct {
	db *sql.DB
}

func NewForms(db *sql.DB) *Forms {
	return &Forms{db: db}
}

func validateForm(form model.Form, questions []model.Question) error {
	if strings.TrimSpace(form.Title) == "" {
		return validationErrorf("form title is required")
	}
	for i := range questions {
		q := &questions[i]
		if strings.TrimSpace(q.Text) == "" {
			return validationErrorf("question %d has no text", i+1)
		}
		qt, err := model.ParseQuestionType(string(q.Type))
		if err != nil {
			return &ValidationError{Msg: err.Error()}
		}
		q.Type = qt

		if form.IsQuiz && (q.CorrectAnswer == nil || q.CorrectAnswer.IsEmpty()) {
			return validationErrorf("question %d has no correct answer", i+1)
		}
	}
	return nil
}

// Publish stores a new published form together with its questions in one
// transaction: either the form and all its questions exist afterwards, or
// nothing does.
func (s *Forms) Publish(ctx context.Context, creatorID int, form model.Form, questions []model.Question) (int, error) {
	if err := validateForm(form, questions); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	now := time.Now()
	var formID int
	err = tx.QueryRowContext(ctx, `
		INSERT INTO forms (creator_id, title, description, is_quiz, is_published, created_at, updated_at)
		VALUES (?, ?, ?, ?, TRUE, ?, ?)
		RETURNING id`,
		creatorID,
		form.Title,
		form.Description,
		form.IsQuiz,
		now,
		now,
	).Scan(&formID)
	if err != nil {
		return 0, errors.Wrap(err, "insert form")
	}

	err = insertQuestions(ctx, tx, formID, questions)
	if err != nil {
		return 0, err
	}

	err = tx.Commit()
	if err != nil {
		return 0, errors.Wrap(err, "commit publish")
	}
	return formID, nil
}

// Update replaces the form's fields and its entire question set in one
// transaction. Only the creator may update; concurrent updates race at the
// store level and the last committed writer wins.
func (s *Forms) Update(ctx context.Context, formID, requesterID int, form model.Form, questions []model.Question) error {
	if err := validateForm(form, questions); err != nil {
		return err
	}
	if err := s.checkOwner(ctx, formID, requesterID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE forms
		SET title = ?, description = ?, is_quiz = ?, updated_at = ?
		WHERE id = ?`,
		form.Title,
		form.Description,
		form.IsQuiz,
		time.Now(),
		formID,
	)
	if err != nil {
		return errors.Wrap(err, "update form")
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM questions WHERE form_id = ?`, formID)
	if err != nil {
		return errors.Wrap(err, "delete old questions")
	}

	err = insertQuestions(ctx, tx, formID, questions)
	if err != nil {
		return err
	}

	err = tx.Commit()
	return errors.Wrap(err, "commit update")
}

// insertQuestions writes the whole question set with a single multi-row
// insert, preserving input order; a missing ordinal defaults to the
// question's index.
func insertQuestions(ctx context.Context, tx *sql.Tx, formID int, questions []model.Question) error {
	if len(questions) == 0 {
		return nil
	}

	var query strings.Builder
	query.WriteString(`
		INSERT INTO questions (form_id, text, type, is_required, options, points, correct_answer, ord)
		VALUES `)

	args := make([]any, 0, len(questions)*8)
	for i, q := range questions {
		if i > 0 {
			query.WriteString(", ")
		}
		query.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")

		var optionsJson any
		if q.Options != nil {
			b, err := json.Marshal(q.Options)
			if err != nil {
				return errors.Wrap(err, "marshal question options")
			}
			optionsJson = string(b)
		}

		var correct any
		if q.CorrectAnswer != nil {
			v, err := q.CorrectAnswer.Value()
			if err != nil {
				return errors.Wrap(err, "marshal correct answer")
			}
			correct = v
		}

		ord := i
		if q.Order != nil {
			ord = *q.Order
		}

		args = append(args, formID, q.Text, q.Type, q.Required, optionsJson, q.Points, correct, ord)
	}

	_, err := tx.ExecContext(ctx, query.String(), args...)
	return errors.Wrap(err, "insert questions")
}

// Delete removes the form with all its questions, responses and answers
// in one transaction.
func (s *Forms) Delete(ctx context.Context, formID, requesterID int) error {
	if err := s.checkOwner(ctx, formID, requesterID); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM answers
		WHERE response_id IN (SELECT id FROM responses WHERE form_id = ?)`,
		formID,
	)
	if err != nil {
		return errors.Wrap(err, "delete answers")
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM responses WHERE form_id = ?`, formID)
	if err != nil {
		return errors.Wrap(err, "delete responses")
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM questions WHERE form_id = ?`, formID)
	if err != nil {
		return errors.Wrap(err, "delete questions")
	}

	_, err = tx.ExecContext(ctx, `DELETE FROM forms WHERE id = ?`, formID)
	if err != nil {
		return errors.Wrap(err, "delete form")
	}

	return errors.Wrap(tx.Commit(), "commit delete")
}

// List returns the requester's forms, newest first, with response counts.
func (s *Forms) List(ctx context.Context, creatorID int) ([]model.FormSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			f.id, f.creator_id, f.title, f.description, f.is_quiz, f.is_published,
			f.created_at, f.updated_at,
			COUNT(r.id)
		FROM forms f
		LEFT JOIN responses r ON (f.id = r.form_id)
		WHERE f.creator_id = ?
		GROUP BY f.id
		ORDER BY f.created_at DESC, f.id DESC`,
		creatorID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "list forms")
	}
	defer rows.Close()

	forms := []model.FormSummary{}
	for rows.Next() {
		f := model.FormSummary{}
		err = rows.Scan(
			&f.ID, &f.CreatorID, &f.Title, &f.Description, &f.IsQuiz, &f.IsPublished,
			&f.CreatedAt, &f.UpdatedAt,
			&f.ResponseCount,
		)
		if err != nil {
			return nil, errors.Wrap(err, "scan form")
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

// Get returns the form and its full question set (correct answers
// included) for the owner's editor view.
func (s *Forms) Get(ctx context.Context, formID, requesterID int) (model.Form, []model.Question, error) {
	if err := s.checkOwner(ctx, formID, requesterID); err != nil {
		return model.Form{}, nil, err
	}
	return s.fetchForm(ctx, formID)
}

// PublicGet returns the form and its questions for the fill-out view.
// Correct answers and points are withheld.
func (s *Forms) PublicGet(ctx context.Context, formID int) (model.Form, []model.Question, error) {
	form, questions, err := s.fetchForm(ctx, formID)
	if err != nil {
		return model.Form{}, nil, err
	}
	for i := range questions {
		questions[i].CorrectAnswer = nil
		questions[i].Points = 0
	}
	return form, questions, nil
}

func (s *Forms) fetchForm(ctx context.Context, formID int) (form model.Form, questions []model.Question, err error) {
	err = s.db.QueryRowContext(ctx, `
		SELECT id, creator_id, title, description, is_quiz, is_published, created_at, updated_at
		FROM forms
		WHERE id = ?`,
		formID,
	).Scan(&form.ID, &form.CreatorID, &form.Title, &form.Description, &form.IsQuiz, &form.IsPublished, &form.CreatedAt, &form.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return form, nil, ErrNotFound
	}
	if err != nil {
		return form, nil, errors.Wrap(err, "get form")
	}

	questions, err = fetchQuestions(ctx, s.db, formID)
	if err != nil {
		return form, nil, err
	}
	return form, questions, nil
}

func fetchQuestions(ctx context.Context, db *sql.DB, formID int) ([]model.Question, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, form_id, text, type, is_required, options, points, correct_answer, ord
		FROM questions
		WHERE form_id = ?
		ORDER BY ord ASC, id ASC`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get questions")
	}
	defer rows.Close()

	questions := []model.Question{}
	for rows.Next() {
		q := model.Question{}
		var opts sql.NullString
		var correct model.AnswerValue
		var correctRaw sql.NullString
		var ord int
		err = rows.Scan(&q.ID, &q.FormID, &q.Text, &q.Type, &q.Required, &opts, &q.Points, &correctRaw, &ord)
		if err != nil {
			return nil, errors.Wrap(err, "scan question")
		}
		q.Order = &ord

		if opts.Valid && opts.String != "" {
			err = json.Unmarshal([]byte(opts.String), &q.Options)
			if err != nil {
				return nil, errors.Wrap(err, "parse question options")
			}
		}
		if correctRaw.Valid && correctRaw.String != "" {
			err = correct.Scan(correctRaw.String)
			if err != nil {
				return nil, errors.Wrap(err, "parse correct answer")
			}
			q.CorrectAnswer = &correct
		}

		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// Responses returns the owner's view of all submissions, newest first.
func (s *Forms) Responses(ctx context.Context, formID, requesterID int) ([]model.Response, error) {
	if err := s.checkOwner(ctx, formID, requesterID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, form_id, submitted_at, total_score
		FROM responses
		WHERE form_id = ?
		ORDER BY submitted_at DESC, id DESC`,
		formID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "get responses")
	}
	defer rows.Close()

	responses := []model.Response{}
	for rows.Next() {
		r := model.Response{}
		err = rows.Scan(&r.ID, &r.FormID, &r.SubmittedAt, &r.TotalScore)
		if err != nil {
			return nil, errors.Wrap(err, "scan response")
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}

func (s *Forms) checkOwner(ctx context.Context, formID, requesterID int) error {
	var creatorID int
	err := s.db.QueryRowContext(ctx, `SELECT creator_id FROM forms WHERE id = ?`, formID).
		Scan(&creatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return errors.Wrap(err, "get form owner")
	}
	if creatorID != requesterID {
		return ErrNotOwner
	}
	return nil
}
