package gforms

import (
	"google.golang.org/api/forms/v1"
)

// BuildRequests translates a schema into the batch update request list: an
// updateFormInfo for the description when it was not part of the create call,
// then one createItem per question tagged with its zero-based position so the
// created form preserves input order.
func BuildRequests(s *Schema, descriptionInCreate bool) []*forms.Request {
	reqs := make([]*forms.Request, 0, len(s.Questions)+1)

	if s.Description != "" && !descriptionInCreate {
		reqs = append(reqs, &forms.Request{
			UpdateFormInfo: &forms.UpdateFormInfoRequest{
				Info:       &forms.Info{Description: s.Description},
				UpdateMask: "description",
			},
		})
	}

	for i, q := range s.Questions {
		reqs = append(reqs, &forms.Request{
			CreateItem: &forms.CreateItemRequest{
				Item: translate(q),
				Location: &forms.Location{
					Index:           int64(i),
					ForceSendFields: []string{"Index"},
				},
			},
		})
	}

	return reqs
}

func choiceOptions(values []string) []*forms.Option {
	opts := make([]*forms.Option, 0, len(values))
	for _, v := range values {
		opts = append(opts, &forms.Option{Value: v})
	}
	return opts
}

func translate(q Question) *forms.Item {
	item := &forms.Item{Title: q.Title}

	switch q.Kind {
	case KindSection:
		item.PageBreakItem = &forms.PageBreakItem{}
		return item
	case KindGrid:
		rows := make([]*forms.Question, 0, len(q.Rows))
		for _, row := range q.Rows {
			rows = append(rows, &forms.Question{
				Required:    q.Required,
				RowQuestion: &forms.RowQuestion{Title: row},
			})
		}
		item.QuestionGroupItem = &forms.QuestionGroupItem{
			Grid: &forms.Grid{
				Columns: &forms.ChoiceQuestion{
					Type:    "RADIO",
					Options: choiceOptions(q.Columns),
				},
			},
			Questions: rows,
		}
		return item
	}

	question := &forms.Question{Required: q.Required}
	switch q.Kind {
	case KindMultipleChoice:
		question.ChoiceQuestion = &forms.ChoiceQuestion{
			Type:    "RADIO",
			Options: choiceOptions(q.Options),
		}
	case KindCheckbox:
		question.ChoiceQuestion = &forms.ChoiceQuestion{
			Type:    "CHECKBOX",
			Options: choiceOptions(q.Options),
		}
	case KindDropdown:
		question.ChoiceQuestion = &forms.ChoiceQuestion{
			Type:    "DROP_DOWN",
			Options: choiceOptions(q.Options),
		}
	case KindShortAnswer:
		question.TextQuestion = &forms.TextQuestion{Paragraph: false}
	case KindParagraph:
		question.TextQuestion = &forms.TextQuestion{Paragraph: true}
	case KindDate:
		question.DateQuestion = &forms.DateQuestion{
			IncludeTime:     q.IncludeTime,
			IncludeYear:     q.IncludeYear,
			ForceSendFields: []string{"IncludeTime", "IncludeYear"},
		}
	case KindTime:
		question.TimeQuestion = &forms.TimeQuestion{}
	case KindScale:
		question.ScaleQuestion = &forms.ScaleQuestion{
			Low:       1,
			High:      5,
			LowLabel:  "Low",
			HighLabel: "High",
		}
	}

	item.QuestionItem = &forms.QuestionItem{Question: question}
	return item
}
