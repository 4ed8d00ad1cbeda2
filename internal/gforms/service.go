package gforms

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/forms/v1"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// ErrRemoteCreationFailed wraps any failed phase of the remote create
// sequence. The sequence is not transactional: a phase failure leaves any
// already-created form behind, and the wrapped phase name tells the caller
// where to resume.
var ErrRemoteCreationFailed = errors.New("remote form creation failed")

// ErrIdentityUnavailable means Google returned no email for the caller's
// access token.
var ErrIdentityUnavailable = errors.New("unable to resolve user email")

// Result identifies a created form.
type Result struct {
	FormID       string
	ResponderURI string
}

// FormFile is one entry from the caller's Drive form listing.
type FormFile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Service executes form operations against the Google Forms and Drive APIs
// with a per-request token source.
type Service struct {
	// DescriptionInCreate sends the description with the initial create call
	// instead of the follow-up batch update.
	DescriptionInCreate bool
}

// CreateForm runs the create → batch update → get sequence and returns the
// form id and responder link.
func (s *Service) CreateForm(ctx context.Context, ts oauth2.TokenSource, schema *Schema) (*Result, error) {
	svc, err := forms.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("%w: build client: %v", ErrRemoteCreationFailed, err)
	}

	info := &forms.Info{Title: schema.Title}
	if s.DescriptionInCreate {
		info.Description = schema.Description
	}
	created, err := svc.Forms.Create(&forms.Form{Info: info}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: create phase: %v", ErrRemoteCreationFailed, err)
	}

	if reqs := BuildRequests(schema, s.DescriptionInCreate); len(reqs) > 0 {
		_, err = svc.Forms.BatchUpdate(created.FormId, &forms.BatchUpdateFormRequest{
			Requests: reqs,
		}).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("%w: update phase (form %s left without items): %v",
				ErrRemoteCreationFailed, created.FormId, err)
		}
	}

	fetched, err := svc.Forms.Get(created.FormId).Fields("responderUri").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: get phase (form %s created): %v",
			ErrRemoteCreationFailed, created.FormId, err)
	}

	return &Result{FormID: created.FormId, ResponderURI: fetched.ResponderUri}, nil
}

// ListForms enumerates the caller's Google Forms through a Drive query.
func (s *Service) ListForms(ctx context.Context, ts oauth2.TokenSource) ([]FormFile, error) {
	svc, err := drive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("build drive client: %w", err)
	}

	resp, err := svc.Files.List().
		Q("mimeType='application/vnd.google-apps.form'").
		Fields("files(id, name)").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}

	files := make([]FormFile, 0, len(resp.Files))
	for _, f := range resp.Files {
		files = append(files, FormFile{ID: f.Id, Name: f.Name})
	}
	return files, nil
}

// ResolveEmail looks up the acting user's email from the userinfo endpoint.
func ResolveEmail(ctx context.Context, ts oauth2.TokenSource) (string, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return "", fmt.Errorf("build userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrIdentityUnavailable, err)
	}
	if info.Email == "" {
		return "", ErrIdentityUnavailable
	}
	return info.Email, nil
}
