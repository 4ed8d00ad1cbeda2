package gforms

import "testing"

func mustSchema(t *testing.T, in SchemaInput) *Schema {
	t.Helper()
	s, err := ParseSchema(in)
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	return s
}

func TestBuildRequestsOrdering(t *testing.T) {
	s := mustSchema(t, SchemaInput{
		Title: "Survey",
		Questions: []QuestionInput{
			{Type: "short_answer", Title: "Name"},
			{Type: "paragraph", Title: "Bio"},
			{Type: "time", Title: "Arrival"},
		},
	})

	reqs := BuildRequests(s, false)
	if len(reqs) != 3 {
		t.Fatalf("requests = %d, want 3", len(reqs))
	}
	for i, r := range reqs {
		if r.CreateItem == nil {
			t.Fatalf("request %d has no createItem", i)
		}
		if r.CreateItem.Location.Index != int64(i) {
			t.Errorf("request %d index = %d, want %d", i, r.CreateItem.Location.Index, i)
		}
		if len(r.CreateItem.Location.ForceSendFields) == 0 {
			t.Errorf("request %d must force-send the zero index", i)
		}
	}
}

func TestBuildRequestsDescriptionPlacement(t *testing.T) {
	s := mustSchema(t, SchemaInput{
		Title:       "Survey",
		Description: "About you",
		Questions:   []QuestionInput{{Type: "short_answer", Title: "Name"}},
	})

	deferred := BuildRequests(s, false)
	if len(deferred) != 2 {
		t.Fatalf("requests = %d, want description update + 1 item", len(deferred))
	}
	info := deferred[0].UpdateFormInfo
	if info == nil || info.Info.Description != "About you" || info.UpdateMask != "description" {
		t.Errorf("first request = %+v, want description update", deferred[0])
	}
	if deferred[1].CreateItem.Location.Index != 0 {
		t.Errorf("question index = %d, want 0", deferred[1].CreateItem.Location.Index)
	}

	inCreate := BuildRequests(s, true)
	if len(inCreate) != 1 {
		t.Fatalf("requests = %d, want only the item when description rides the create call", len(inCreate))
	}
}

func TestTranslateMultipleChoiceRoundTrip(t *testing.T) {
	s := mustSchema(t, SchemaInput{
		Title: "Survey",
		Questions: []QuestionInput{
			{Type: "multiple_choice", Title: "Pick one", Required: true, Options: []string{"A", "B"}},
		},
	})

	item := BuildRequests(s, false)[0].CreateItem.Item
	q := item.QuestionItem.Question
	if !q.Required {
		t.Error("required flag lost")
	}
	cq := q.ChoiceQuestion
	if cq == nil || cq.Type != "RADIO" {
		t.Fatalf("choice question = %+v, want RADIO", cq)
	}
	if len(cq.Options) != 2 || cq.Options[0].Value != "A" || cq.Options[1].Value != "B" {
		t.Errorf("options = %+v, want exactly [A B] in order", cq.Options)
	}
}

func TestTranslateChoiceRenderings(t *testing.T) {
	s := mustSchema(t, SchemaInput{
		Title: "Survey",
		Questions: []QuestionInput{
			{Type: "checkbox", Title: "Many", Options: []string{"A"}},
			{Type: "dropdown", Title: "One", Options: []string{"A"}},
		},
	})

	reqs := BuildRequests(s, false)
	if got := reqs[0].CreateItem.Item.QuestionItem.Question.ChoiceQuestion.Type; got != "CHECKBOX" {
		t.Errorf("checkbox type = %q, want CHECKBOX", got)
	}
	if got := reqs[1].CreateItem.Item.QuestionItem.Question.ChoiceQuestion.Type; got != "DROP_DOWN" {
		t.Errorf("dropdown type = %q, want DROP_DOWN", got)
	}
}

func TestTranslateTextKinds(t *testing.T) {
	s := mustSchema(t, SchemaInput{
		Title: "Survey",
		Questions: []QuestionInput{
			{Type: "short_answer", Title: "Name"},
			{Type: "paragraph", Title: "Bio"},
		},
	})

	reqs := BuildRequests(s, false)
	short := reqs[0].CreateItem.Item.QuestionItem.Question.TextQuestion
	long := reqs[1].CreateItem.Item.QuestionItem.Question.TextQuestion
	if short == nil || short.Paragraph {
		t.Error("short answer must be single-line")
	}
	if long == nil || !long.Paragraph {
		t.Error("paragraph must be multi-line")
	}
}

func TestTranslateDate(t *testing.T) {
	s := mustSchema(t, SchemaInput{
		Title:     "Survey",
		Questions: []QuestionInput{{Type: "date", Title: "When"}},
	})

	dq := BuildRequests(s, false)[0].CreateItem.Item.QuestionItem.Question.DateQuestion
	if dq == nil {
		t.Fatal("expected date question")
	}
	if dq.IncludeTime || !dq.IncludeYear {
		t.Errorf("flags = time:%v year:%v, want time:false year:true", dq.IncludeTime, dq.IncludeYear)
	}
	if len(dq.ForceSendFields) == 0 {
		t.Error("date flags must be force-sent so false values reach the API")
	}
}

func TestTranslateScale(t *testing.T) {
	s := mustSchema(t, SchemaInput{
		Title:     "Survey",
		Questions: []QuestionInput{{Type: "scale", Title: "Rate us"}},
	})

	sq := BuildRequests(s, false)[0].CreateItem.Item.QuestionItem.Question.ScaleQuestion
	if sq == nil {
		t.Fatal("expected scale question")
	}
	if sq.Low != 1 || sq.High != 5 {
		t.Errorf("range = %d..%d, want 1..5", sq.Low, sq.High)
	}
	if sq.LowLabel == "" || sq.HighLabel == "" {
		t.Error("scale must carry low/high labels")
	}
}

func TestTranslateGrid(t *testing.T) {
	s := mustSchema(t, SchemaInput{
		Title: "Survey",
		Questions: []QuestionInput{
			{Type: "grid", Title: "Rate", Rows: []string{"Speed", "Quality"}, Columns: []string{"1", "2", "3"}},
		},
	})

	item := BuildRequests(s, false)[0].CreateItem.Item
	group := item.QuestionGroupItem
	if group == nil {
		t.Fatal("expected question group item")
	}
	if len(group.Questions) != 2 {
		t.Errorf("rows = %d, want 2", len(group.Questions))
	}
	if group.Questions[0].RowQuestion.Title != "Speed" {
		t.Errorf("row 0 = %q, want Speed", group.Questions[0].RowQuestion.Title)
	}
	if len(group.Grid.Columns.Options) != 3 {
		t.Errorf("columns = %d, want 3", len(group.Grid.Columns.Options))
	}
}

func TestTranslateSection(t *testing.T) {
	s := mustSchema(t, SchemaInput{
		Title:     "Survey",
		Questions: []QuestionInput{{Type: "section", Title: "Part 2"}},
	})

	item := BuildRequests(s, false)[0].CreateItem.Item
	if item.PageBreakItem == nil {
		t.Fatal("expected page break item")
	}
	if item.QuestionItem != nil {
		t.Error("section must not carry a question")
	}
}
