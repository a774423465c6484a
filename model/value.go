package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// AnswerValue is either a single string or a list of strings, depending on
// the question type (checkbox questions submit lists, everything else a
// scalar). It is stored as JSON text and compared by its String form when
// scoring.
type AnswerValue struct {
	scalar string
	multi  []string
	list   bool
}

func Scalar(s string) AnswerValue {
	return AnswerValue{scalar: s}
}

func Multi(ss ...string) AnswerValue {
	return AnswerValue{multi: ss, list: true}
}

func (v AnswerValue) IsList() bool {
	return v.list
}

func (v AnswerValue) IsEmpty() bool {
	if v.list {
		return len(v.multi) == 0
	}
	return v.scalar == ""
}

// String flattens the value for scoring comparison; lists join with a
// comma, matching how choice answers are authored.
func (v AnswerValue) String() string {
	if v.list {
		return strings.Join(v.multi, ",")
	}
	return v.scalar
}

// Matches reports whether v equals the correct answer, case-insensitively
// on the flattened string form.
func (v AnswerValue) Matches(correct AnswerValue) bool {
	return strings.EqualFold(v.String(), correct.String())
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.list {
		return json.Marshal(v.multi)
	}
	return json.Marshal(v.scalar)
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		v.list = true
		v.scalar = ""
		return json.Unmarshal(data, &v.multi)
	}
	if trimmed == "null" {
		*v = AnswerValue{}
		return nil
	}
	v.list = false
	v.multi = nil
	return json.Unmarshal(data, &v.scalar)
}

// Value serializes for a TEXT column.
func (v AnswerValue) Value() (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (v *AnswerValue) Scan(src any) error {
	switch s := src.(type) {
	case nil:
		*v = AnswerValue{}
		return nil
	case string:
		if s == "" {
			*v = AnswerValue{}
			return nil
		}
		return v.UnmarshalJSON([]byte(s))
	case []byte:
		if len(s) == 0 {
			*v = AnswerValue{}
			return nil
		}
		return v.UnmarshalJSON(s)
	default:
		return fmt.Errorf("cannot scan %T into AnswerValue", src)
	}
}
