package inventory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCalendar = `{
  "2025": {
    "January 2025": {
      "January 1, 2025, Wednesday": {"event": "New Year", "type": "Observance"}
    },
    "October 2025": {
      "October 20, 2025, Monday": {"event": "Diwali", "type": "Gazetted Holiday"},
      "October 2, 2025, Thursday": {"event": "Gandhi Jayanti", "type": "Gazetted Holiday"}
    },
    "November 2025": {
      "November 5, 2025, Wednesday": {"event": "Guru Nanak Jayanti"}
    }
  }
}`

func TestCalendar_Upcoming(t *testing.T) {
	cal, err := ParseCalendar([]byte(testCalendar))
	require.NoError(t, err)
	require.Len(t, cal, 4)

	tests := []struct {
		name  string
		now   time.Time
		count int
		want  []string
	}{
		{"same day included", time.Date(2025, 10, 2, 18, 0, 0, 0, time.UTC), 10, []string{"Gandhi Jayanti", "Diwali", "Guru Nanak Jayanti"}},
		{"count limits", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 2, []string{"New Year", "Gandhi Jayanti"}},
		{"later in month", time.Date(2025, 10, 3, 0, 0, 0, 0, time.UTC), 10, []string{"Diwali", "Guru Nanak Jayanti"}},
		{"year over", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 10, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cal.Upcoming(tt.now, tt.count)
			names := make([]string, 0, len(got))
			for _, h := range got {
				names = append(names, h.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestParseCalendar_BadDate(t *testing.T) {
	_, err := ParseCalendar([]byte(`{"2025": {"May 2025": {"sometime in May": {"event": "x"}}}}`))
	assert.Error(t, err)
}

func TestHoliday_String(t *testing.T) {
	h := Holiday{Name: "Diwali", Date: time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, "Diwali (Festival) - October 20, 2025, Monday", h.String())
}

func Test_extractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"fenced", "Here you go:\n```json\n{\"a\": 1}\n```\nEnjoy", `{"a": 1}`},
		{"fence without language", "```\n{\"a\": 2}\n```", `{"a": 2}`},
		{"bare", `Sure! {"a": {"b": 3}} hope it helps`, `{"a": {"b": 3}}`},
		{"no json", "  nothing  ", "nothing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.text))
		})
	}
}

type fakeModel struct {
	answer string
	err    error
	prompt string
}

func (m *fakeModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompt = prompt
	return m.answer, m.err
}

func TestRecommender_Recommend(t *testing.T) {
	model := &fakeModel{answer: "```json\n" + `{"recommendations": [
		{"holiday": "Diwali", "items": ["painted diyas", "wall hangings"], "reason": "lights"},
		{"holiday": "Chhath", "items": ["soop"], "reason": "ritual"}
	]}` + "\n```"}
	holidays := []Holiday{{Name: "Diwali", Date: time.Date(2025, 10, 20, 0, 0, 0, 0, time.UTC)}}

	rec, err := NewRecommender(model).Recommend(context.Background(), []string{"Madhubani"}, "Uttar Pradesh", holidays)
	require.NoError(t, err)
	assert.True(t, strings.Contains(model.prompt, "Uttar Pradesh"))
	assert.True(t, strings.Contains(model.prompt, "Diwali (Festival) - October 20, 2025, Monday"))

	stored := rec.Record(9, []string{"Madhubani", "Warli"})
	assert.Equal(t, "Madhubani, Warli", stored.ArtForms)
	assert.Equal(t, []string{"Diwali", "Chhath"}, stored.Holidays)
	assert.Equal(t, []string{"painted diyas", "wall hangings", "soop"}, stored.Items)
	assert.Equal(t, []string{"lights", "ritual"}, stored.Reasons)
}

func TestRecommender_Errors(t *testing.T) {
	_, err := NewRecommender(&fakeModel{answer: "I cannot help with that"}).Recommend(context.Background(), nil, "UP", nil)
	assert.ErrorIs(t, err, ErrUnparseable)

	_, err = NewRecommender(&fakeModel{answer: `{"recommendations": []}`}).Recommend(context.Background(), nil, "UP", nil)
	assert.ErrorIs(t, err, ErrUnparseable)

	boom := errors.New("quota")
	_, err = NewRecommender(&fakeModel{err: boom}).Recommend(context.Background(), nil, "UP", nil)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrUnparseable)
}
