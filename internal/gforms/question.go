// Package gforms translates agent-supplied form schemas into Google Forms
// API calls: a create for the form shell, one batch update carrying every
// question, and a final fetch of the responder link.
package gforms

import (
	"errors"
	"fmt"
)

// Kind is the closed set of supported question kinds. Unknown type tags are
// rejected when a schema is parsed, never at translation time.
type Kind int

const (
	KindMultipleChoice Kind = iota
	KindCheckbox
	KindShortAnswer
	KindParagraph
	KindDropdown
	KindDate
	KindTime
	KindScale
	KindGrid
	KindSection
)

var (
	// ErrInvalidSchema means the schema failed structural validation.
	ErrInvalidSchema = errors.New("invalid form schema")
)

// UnsupportedTypeError names a question type tag outside the supported set.
type UnsupportedTypeError struct {
	Type string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported question type: %s", e.Type)
}

// Question is one validated question. Which fields are meaningful depends on
// Kind; Parse guarantees the required ones are present.
type Question struct {
	Kind     Kind
	Title    string
	Required bool

	// Choice kinds.
	Options []string

	// Date sub-flags.
	IncludeTime bool
	IncludeYear bool

	// Grid layout.
	Rows    []string
	Columns []string
}

// QuestionInput is the wire shape of one question in a create-form request.
type QuestionInput struct {
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Required    bool     `json:"required"`
	Options     []string `json:"options"`
	IncludeTime *bool    `json:"includeTime"`
	IncludeYear *bool    `json:"includeYear"`
	Rows        []string `json:"rows"`
	Columns     []string `json:"columns"`
}

// Schema is a validated form definition ready for translation.
type Schema struct {
	Title       string
	Description string
	Questions   []Question
}

// SchemaInput is the wire shape of a create-form request body.
type SchemaInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   []QuestionInput `json:"questions"`
}

// ParseSchema validates a wire schema and resolves every question's type tag.
// A single bad question rejects the whole schema; no partial form is ever
// sent upstream.
func ParseSchema(in SchemaInput) (*Schema, error) {
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidSchema)
	}
	s := &Schema{
		Title:       in.Title,
		Description: in.Description,
		Questions:   make([]Question, 0, len(in.Questions)),
	}
	for i, q := range in.Questions {
		parsed, err := parseQuestion(q)
		if err != nil {
			var unsupported *UnsupportedTypeError
			if errors.As(err, &unsupported) {
				return nil, err
			}
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		s.Questions = append(s.Questions, parsed)
	}
	return s, nil
}

func parseQuestion(in QuestionInput) (Question, error) {
	q := Question{Title: in.Title, Required: in.Required}
	if in.Title == "" {
		return q, fmt.Errorf("%w: question title is required", ErrInvalidSchema)
	}

	switch in.Type {
	case "multiple_choice", "RADIO":
		q.Kind = KindMultipleChoice
	case "checkbox":
		q.Kind = KindCheckbox
	case "short_answer", "text":
		q.Kind = KindShortAnswer
	case "paragraph":
		q.Kind = KindParagraph
	case "dropdown":
		q.Kind = KindDropdown
	case "date":
		q.Kind = KindDate
	case "time":
		q.Kind = KindTime
	case "scale":
		q.Kind = KindScale
	case "grid":
		q.Kind = KindGrid
	case "section":
		q.Kind = KindSection
	default:
		return q, &UnsupportedTypeError{Type: in.Type}
	}

	switch q.Kind {
	case KindMultipleChoice, KindCheckbox, KindDropdown:
		if len(in.Options) == 0 {
			return q, fmt.Errorf("%w: %s requires options", ErrInvalidSchema, in.Type)
		}
		q.Options = in.Options
	case KindDate:
		// Time defaults off, year defaults on, matching Google's own form
		// editor defaults.
		if in.IncludeTime != nil {
			q.IncludeTime = *in.IncludeTime
		}
		q.IncludeYear = true
		if in.IncludeYear != nil {
			q.IncludeYear = *in.IncludeYear
		}
	case KindGrid:
		if len(in.Rows) == 0 || len(in.Columns) == 0 {
			return q, fmt.Errorf("%w: grid requires rows and columns", ErrInvalidSchema)
		}
		q.Rows = in.Rows
		q.Columns = in.Columns
	}

	return q, nil
}
