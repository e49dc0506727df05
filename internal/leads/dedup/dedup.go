// Package dedup rejects lead submissions whose identity answers already
// belong to an active lead.
package dedup

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/platform/apperr"
	"leadportal_backend/platform/phone"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// QuestionLookup resolves questions by their fixed tag.
type QuestionLookup interface {
	FindQuestionByTag(ctx context.Context, tag domain.QuestionTag) (domain.Question, error)
}

// AnswerLookup searches active leads for an answer.
type AnswerLookup interface {
	HasActiveAnswer(ctx context.Context, questionID uuid.UUID, answer string) (bool, error)
}

// Options configures a Checker.
type Options struct {
	// Strict enables the represented-by-firm bypass.
	Strict bool
	// PhoneRegion is the default region for numbers without a country prefix.
	PhoneRegion string
}

// Result is the outcome of a duplicate check.
type Result struct {
	// Bypass means the submission is already represented and must not be stored.
	Bypass    bool
	Duplicate bool
	// Responses holds the answers with identity values normalised.
	Responses    []domain.Response
	IdentityKeys []repository.IdentityKey
}

// Checker runs the identity deduplication check.
type Checker struct {
	questions QuestionLookup
	answers   AnswerLookup
	opts      Options
}

// New creates a Checker.
func New(questions QuestionLookup, answers AnswerLookup, opts Options) *Checker {
	return &Checker{questions: questions, answers: answers, opts: opts}
}

type identityQuestions struct {
	email       *uuid.UUID
	phone       *uuid.UUID
	represented *uuid.UUID
}

// Check validates and normalises responses, then reports whether an active
// lead already holds the same email or phone answer.
func (c *Checker) Check(ctx context.Context, responses []domain.Response) (Result, error) {
	ids, err := c.resolve(ctx)
	if err != nil {
		return Result{}, err
	}

	if ids.represented != nil {
		if answer, ok := find(responses, *ids.represented); ok && strings.EqualFold(strings.TrimSpace(answer), "yes") {
			return Result{Bypass: true}, nil
		}
	}

	normalized, keys, err := c.normalize(responses, ids)
	if err != nil {
		return Result{}, err
	}

	for _, key := range keys {
		held, err := c.answers.HasActiveAnswer(ctx, key.QuestionID, key.Answer)
		if err != nil {
			return Result{}, err
		}
		if held {
			return Result{Duplicate: true, Responses: normalized, IdentityKeys: keys}, nil
		}
	}

	return Result{Responses: normalized, IdentityKeys: keys}, nil
}

// Normalize validates and normalises responses and derives their identity
// keys without searching for duplicates. Updates use it so the key constraint
// decides conflicts.
func (c *Checker) Normalize(ctx context.Context, responses []domain.Response) ([]domain.Response, []repository.IdentityKey, error) {
	ids, err := c.resolve(ctx)
	if err != nil {
		return nil, nil, err
	}
	return c.normalize(responses, ids)
}

func (c *Checker) resolve(ctx context.Context) (identityQuestions, error) {
	var ids identityQuestions
	g, gctx := errgroup.WithContext(ctx)

	lookup := func(tag domain.QuestionTag, dst **uuid.UUID) {
		g.Go(func() error {
			q, err := c.questions.FindQuestionByTag(gctx, tag)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			id := q.ID
			*dst = &id
			return nil
		})
	}

	lookup(domain.TagEmail, &ids.email)
	lookup(domain.TagContactNumber, &ids.phone)
	if c.opts.Strict {
		lookup(domain.TagRepresentedByFirmAttorney, &ids.represented)
	}

	if err := g.Wait(); err != nil {
		return identityQuestions{}, err
	}
	return ids, nil
}

func (c *Checker) normalize(responses []domain.Response, ids identityQuestions) ([]domain.Response, []repository.IdentityKey, error) {
	out := make([]domain.Response, len(responses))
	copy(out, responses)

	keys := make([]repository.IdentityKey, 0, 2)
	seen := make(map[uuid.UUID]bool, 2)

	for i, r := range out {
		switch {
		case ids.email != nil && r.QuestionID == *ids.email:
			email := strings.ToLower(strings.TrimSpace(r.Answer))
			if !emailPattern.MatchString(email) {
				return nil, nil, apperr.Validation("invalid email format").WithOp("dedup.Check")
			}
			out[i].Answer = email
		case ids.phone != nil && r.QuestionID == *ids.phone:
			out[i].Answer = phone.NormalizeE164(r.Answer, c.opts.PhoneRegion)
		default:
			continue
		}

		if out[i].Answer == "" || seen[r.QuestionID] {
			continue
		}
		seen[r.QuestionID] = true
		keys = append(keys, repository.IdentityKey{QuestionID: r.QuestionID, Answer: out[i].Answer})
	}

	return out, keys, nil
}

func find(responses []domain.Response, questionID uuid.UUID) (string, bool) {
	for _, r := range responses {
		if r.QuestionID == questionID {
			return r.Answer, true
		}
	}
	return "", false
}
