package dedup

import (
	"context"
	"errors"
	"testing"

	"leadportal_backend/internal/leads/domain"
	"leadportal_backend/internal/leads/repository"
	"leadportal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuestions map[domain.QuestionTag]uuid.UUID

func (f fakeQuestions) FindQuestionByTag(_ context.Context, tag domain.QuestionTag) (domain.Question, error) {
	id, ok := f[tag]
	if !ok {
		return domain.Question{}, repository.ErrNotFound
	}
	return domain.Question{ID: id, Tag: &tag}, nil
}

type fakeAnswers struct {
	held  map[repository.IdentityKey]bool
	calls int
	err   error
}

func (f *fakeAnswers) HasActiveAnswer(_ context.Context, questionID uuid.UUID, answer string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	return f.held[repository.IdentityKey{QuestionID: questionID, Answer: answer}], nil
}

var (
	emailQ       = uuid.New()
	phoneQ       = uuid.New()
	representedQ = uuid.New()
	nameQ        = uuid.New()
)

func questions() fakeQuestions {
	return fakeQuestions{
		domain.TagEmail:                     emailQ,
		domain.TagContactNumber:             phoneQ,
		domain.TagRepresentedByFirmAttorney: representedQ,
	}
}

func TestCheckFindsDuplicateEmailOrPhone(t *testing.T) {
	tests := []struct {
		name      string
		held      repository.IdentityKey
		responses []domain.Response
		want      bool
	}{
		{
			name:      "same email different case",
			held:      repository.IdentityKey{QuestionID: emailQ, Answer: "jane@example.com"},
			responses: []domain.Response{{QuestionID: emailQ, Answer: " Jane@Example.com "}},
			want:      true,
		},
		{
			name:      "phone compared in e164",
			held:      repository.IdentityKey{QuestionID: phoneQ, Answer: "+16502530000"},
			responses: []domain.Response{{QuestionID: phoneQ, Answer: "(650) 253-0000"}},
			want:      true,
		},
		{
			name:      "same answer under another question",
			held:      repository.IdentityKey{QuestionID: nameQ, Answer: "jane@example.com"},
			responses: []domain.Response{{QuestionID: emailQ, Answer: "jane@example.com"}},
			want:      false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			answers := &fakeAnswers{held: map[repository.IdentityKey]bool{tc.held: true}}
			checker := New(questions(), answers, Options{PhoneRegion: "US"})

			result, err := checker.Check(context.Background(), tc.responses)
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Duplicate)
			assert.False(t, result.Bypass)
		})
	}
}

func TestCheckRejectsMalformedEmail(t *testing.T) {
	checker := New(questions(), &fakeAnswers{}, Options{})

	_, err := checker.Check(context.Background(), []domain.Response{{QuestionID: emailQ, Answer: "not-an-email"}})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCheckStrictBypass(t *testing.T) {
	answers := &fakeAnswers{}
	responses := []domain.Response{
		{QuestionID: representedQ, Answer: "YES"},
		{QuestionID: emailQ, Answer: "broken"},
	}

	strict := New(questions(), answers, Options{Strict: true})
	result, err := strict.Check(context.Background(), responses)
	require.NoError(t, err)
	assert.True(t, result.Bypass)
	assert.Zero(t, answers.calls)

	lenient := New(questions(), answers, Options{Strict: false})
	_, err = lenient.Check(context.Background(), responses)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "bypass only applies in strict mode")
}

func TestCheckWithoutTaggedQuestions(t *testing.T) {
	answers := &fakeAnswers{}
	checker := New(fakeQuestions{}, answers, Options{})

	result, err := checker.Check(context.Background(), []domain.Response{{QuestionID: nameQ, Answer: "Jane"}})
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Empty(t, result.IdentityKeys)
	assert.Zero(t, answers.calls)
}

func TestCheckReturnsIdentityKeys(t *testing.T) {
	checker := New(questions(), &fakeAnswers{}, Options{PhoneRegion: "US"})

	result, err := checker.Check(context.Background(), []domain.Response{
		{QuestionID: nameQ, Answer: "Jane"},
		{QuestionID: emailQ, Answer: "Jane@Example.com"},
		{QuestionID: phoneQ, Answer: "650-253-0000"},
	})
	require.NoError(t, err)
	assert.Equal(t, []repository.IdentityKey{
		{QuestionID: emailQ, Answer: "jane@example.com"},
		{QuestionID: phoneQ, Answer: "+16502530000"},
	}, result.IdentityKeys)
	assert.Equal(t, "Jane", result.Responses[0].Answer)
	assert.Equal(t, "+16502530000", result.Responses[2].Answer)
}

func TestCheckPropagatesStorageErrors(t *testing.T) {
	boom := errors.New("connection reset")
	checker := New(questions(), &fakeAnswers{err: boom}, Options{})

	_, err := checker.Check(context.Background(), []domain.Response{{QuestionID: emailQ, Answer: "a@b.co"}})
	assert.ErrorIs(t, err, boom)
}
