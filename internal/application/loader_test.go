package application

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-tally/internal/domain"
	"github.com/ahrav/go-tally/internal/ports"
)

func TestLoadQuestions(t *testing.T) {
	input := `[
		{"id": "q1", "type": "singleChoice", "options": ["A", "B"], "allowOther": true},
		{"id": "q2", "type": "slider", "sliderMin": 0, "sliderMax": 10},
		{"id": "q3", "type": "cardSort", "options": ["Login"],
		 "cardSortCategories": [{"id": "acct", "name": "Account"}], "cardSortAllowUserCategories": true}
	]`

	questions, err := LoadQuestions(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, questions, 3)

	assert.Equal(t, domain.TypeSingleChoice, questions[0].Type)
	assert.Equal(t, []string{"A", "B"}, questions[0].Options)
	assert.True(t, questions[0].AllowOther)

	require.NotNil(t, questions[1].SliderMax)
	assert.Equal(t, 10.0, *questions[1].SliderMax)

	assert.Equal(t, []domain.Category{{ID: "acct", Name: "Account"}}, questions[2].CardSortCategories)
	assert.True(t, questions[2].CardSortAllowUserCategories)
}

func TestLoadRecords(t *testing.T) {
	input := `[
		{"sessionId": "s1", "questionId": "q1", "value": "A"},
		{"sessionId": "s1", "questionId": "q2", "value": 7.5},
		{"sessionId": "s2", "questionId": "q1", "value": ["__other__"], "otherText": "Foo"},
		{"sessionId": "s2", "questionId": "q4", "value": {"Speed": "Good"}}
	]`

	records, err := LoadRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "A", records[0].Value)
	assert.Equal(t, 7.5, records[1].Value)
	assert.Equal(t, []any{"__other__"}, records[2].Value)
	assert.Equal(t, "Foo", records[2].OtherText)
	assert.Equal(t, map[string]any{"Speed": "Good"}, records[3].Value)
}

func TestLoadRecords_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "not an array", input: `{"sessionId": "s1"}`},
		{name: "malformed", input: `[{"sessionId": "s1"`},
		{name: "trailing document", input: `[] []`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRecords(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ports.ErrInvalidInput)

			var cfgErr *ports.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "records", cfgErr.ConfigKey)
		})
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()

	t.Run("questions", func(t *testing.T) {
		path := filepath.Join(dir, "questions.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"id": "q1", "type": "rating"}]`), 0o600))

		questions, err := LoadQuestionsFile(path)
		require.NoError(t, err)
		assert.Equal(t, []domain.QuestionDefinition{{ID: "q1", Type: domain.TypeRating}}, questions)
	})

	t.Run("records", func(t *testing.T) {
		path := filepath.Join(dir, "records.json")
		require.NoError(t, os.WriteFile(path, []byte(`[{"sessionId": "s1", "questionId": "q1", "value": 4}]`), 0o600))

		records, err := LoadRecordsFile(path)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "s1", records[0].SessionID)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadRecordsFile(filepath.Join(dir, "absent.json"))
		assert.ErrorIs(t, err, ports.ErrConfigNotFound)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`nope`), 0o600))

		_, err := LoadQuestionsFile(path)
		assert.ErrorIs(t, err, ports.ErrInvalidInput)
		var cfgErr *ports.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, path, cfgErr.ConfigKey)
	})
}
