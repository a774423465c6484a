package model

import (
	"fmt"
	"strings"
	"time"
)

type QuestionType string

const (
	ShortText      QuestionType = "short_text"
	LongText       QuestionType = "long_text"
	MultipleChoice QuestionType = "multiple_choice"
	Checkbox       QuestionType = "checkbox"
	Dropdown       QuestionType = "dropdown"
)

// ParseQuestionType normalizes the wire form (SHORT_TEXT, Dropdown, ...)
// to the stored lower-case form.
func ParseQuestionType(s string) (QuestionType, error) {
	switch t := QuestionType(strings.ToLower(s)); t {
	case ShortText, LongText, MultipleChoice, Checkbox, Dropdown:
		return t, nil
	default:
		return "", fmt.Errorf("invalid question type %q", s)
	}
}

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Form struct {
	ID          int       `json:"id,omitempty"`
	CreatorID   int       `json:"creatorId,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsQuiz      bool      `json:"isQuiz"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// FormSummary is one row of the creator's dashboard listing.
type FormSummary struct {
	Form
	ResponseCount int `json:"responseCount"`
}

type Question struct {
	ID            int          `json:"id,omitempty"`
	FormID        int          `json:"formId,omitempty"`
	Text          string       `json:"questionText"`
	Type          QuestionType `json:"type"`
	Required      bool         `json:"isRequired"`
	Options       []string     `json:"options,omitempty"`
	Points        int          `json:"points,omitempty"`
	CorrectAnswer *AnswerValue `json:"correctAnswer,omitempty"`
	// Order is a pointer so a missing value can default to the
	// question's position in the submitted list.
	Order *int `json:"order,omitempty"`
}

type Response struct {
	ID          int       `json:"id"`
	FormID      int       `json:"formId"`
	SubmittedAt time.Time `json:"submittedAt"`
	TotalScore  int       `json:"totalScore"`
}

// Answer is one respondent's value for one question.
type Answer struct {
	QuestionID int         `json:"questionId"`
	Value      AnswerValue `json:"value"`
}
