package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueTruthy(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  bool
	}{
		{"null", Null(), false},
		{"empty string", String(""), false},
		{"string", String("web"), true},
		{"zero", Number(0), false},
		{"number", Number(3), true},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"empty object", Object(nil), true},
		{"empty array", Array(), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.value.Truthy())
		})
	}
}

func TestValueDecodesEveryKind(t *testing.T) {
	var got []Value
	require.NoError(t, json.Unmarshal([]byte(`["a", 1.5, true, null, {"x": [1]}, []]`), &got))

	require.Len(t, got, 6)
	assert.Equal(t, KindString, got[0].Kind())
	assert.Equal(t, 1.5, got[1].Num())
	assert.True(t, got[2].BoolVal())
	assert.True(t, got[3].IsNull())
	inner, ok := got[4].Field("x")
	require.True(t, ok)
	assert.True(t, inner.Equal(Array(Number(1))))
	assert.Equal(t, KindArray, got[5].Kind())

	raw, err := json.Marshal(got[4])
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":[1]}`, string(raw))
}

func TestDateFormat(t *testing.T) {
	at := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	tests := []struct {
		pattern DateFormat
		want    string
	}{
		{"MM/DD/YYYY", "03/05/2024"},
		{"YYYY-MM-DD[T]HH:mm:ss", "2024-03-05T14:07:09"},
		{"Do MMMM YYYY", "5th March 2024"},
		{"h:mm A", "2:07 PM"},
		{"dddd", "Tuesday"},
		{"D/M/YY", "5/3/24"},
	}
	for _, tc := range tests {
		t.Run(string(tc.pattern), func(t *testing.T) {
			got, err := tc.pattern.Format(at)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	assert.Error(t, DateFormat("[T").Validate())
}

func TestOrdinal(t *testing.T) {
	assert.Equal(t, "1st", ordinal(1))
	assert.Equal(t, "2nd", ordinal(2))
	assert.Equal(t, "3rd", ordinal(3))
	assert.Equal(t, "11th", ordinal(11))
	assert.Equal(t, "12th", ordinal(12))
	assert.Equal(t, "22nd", ordinal(22))
}

func TestConfigProblems(t *testing.T) {
	q := uuid.New()
	web := String("web")
	cfg := Config{RequestBody: []FieldMapping{
		{Key: "first_name", QuestionID: &q},
		{Key: "source", Default: &web},
		{Key: "empty"},
		{Key: "first_name", QuestionID: &q},
		{Key: "dob", QuestionID: &q, DateFormat: "[YYYY"},
	}}

	problems := cfg.Problems()
	require.Len(t, problems, 3)
	assert.Equal(t, 2, problems[0].Index)
	assert.Equal(t, 3, problems[1].Index)
	assert.Equal(t, 4, problems[2].Index)
}

func TestConfigNormalize(t *testing.T) {
	cfg := Config{Path: " https://intake.example/leads ", Method: "put"}.Normalize()
	assert.Equal(t, "https://intake.example/leads", cfg.Path)
	assert.Equal(t, "PUT", cfg.Method)
	assert.Equal(t, "PUT", cfg.HTTPMethod())
	assert.NotNil(t, cfg.RequestBody)
	assert.True(t, cfg.Ready())
	assert.False(t, Config{Path: "https://x.example"}.Ready())
}

func TestResolve(t *testing.T) {
	dob, name, note, missing := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	web, blank, zero := String("web"), String(""), Number(0)

	cfg := Config{RequestBody: []FieldMapping{
		{Key: "dob", QuestionID: &dob, DateFormat: "MM/DD/YYYY"},
		{Key: "note", QuestionID: &note, DateFormat: "MM/DD/YYYY"},
		{Key: "source", QuestionID: &name, Default: &web},
		{Key: "name", QuestionID: &name, Default: &blank},
		{Key: "phone", QuestionID: &missing},
		{Key: "count", Default: &zero},
	}}
	answers := map[uuid.UUID]string{dob: "2024-03-05", note: "call after lunch", name: "Ada"}

	got := Resolve(cfg, answers)
	require.Len(t, got, 6)
	assert.True(t, got[0].Response.Equal(String("03/05/2024")))
	assert.True(t, got[1].Response.Equal(String("call after lunch")), "unparseable dates keep the answer")
	assert.True(t, got[2].Response.Equal(web), "truthy default wins")
	assert.True(t, got[3].Response.Equal(String("Ada")), "falsy default falls back to the answer")
	assert.True(t, got[4].Response.IsNull())
	assert.True(t, got[5].Response.IsNull())

	raw, err := json.Marshal(NewPayload(got[:1]))
	require.NoError(t, err)
	assert.JSONEq(t, `{"statusFlag":"SUCCESS","requestBody":[{"key":"dob","question_id":"`+dob.String()+`","date_format":"MM/DD/YYYY","response":"03/05/2024"}]}`, string(raw))
}
