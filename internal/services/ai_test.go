package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/column-task-api/internal/constants"
	"github.com/yukikurage/column-task-api/internal/models"
)

type fakeSuggester struct {
	subtasks []SuggestedSubtask
	err      error
	seen     *models.Task
}

func (f *fakeSuggester) SuggestSubtasks(_ context.Context, task *models.Task) ([]SuggestedSubtask, error) {
	f.seen = task
	return f.subtasks, f.err
}

func TestParseSuggestions(t *testing.T) {
	subtasks, err := parseSuggestions(`{"subtasks":[
		{"title":"  Draft outline ","description":"a","priority":"high"},
		{"title":"","description":"skipped"},
		{"title":"Review","priority":"someday"}
	]}`)
	require.NoError(t, err)
	require.Len(t, subtasks, 2)
	assert.Equal(t, "Draft outline", subtasks[0].Title)
	assert.Equal(t, models.PriorityHigh, subtasks[0].Priority)
	assert.Equal(t, models.PriorityMedium, subtasks[1].Priority)

	_, err = parseSuggestions("[not json")
	assert.Error(t, err)
}

func TestParseSuggestions_Caps(t *testing.T) {
	body := `{"subtasks":[`
	for i := 0; i < constants.MaxGeneratedSubtasks+5; i++ {
		if i > 0 {
			body += ","
		}
		body += `{"title":"step"}`
	}
	body += `]}`

	subtasks, err := parseSuggestions(body)
	require.NoError(t, err)
	assert.Len(t, subtasks, constants.MaxGeneratedSubtasks)
}

func TestAIService_NilIsNotConfigured(t *testing.T) {
	var s *AIService
	_, err := s.SuggestSubtasks(context.Background(), &models.Task{Title: "x"})
	assert.ErrorIs(t, err, ErrAIServiceNotConfigured)
}

func (suite *TaskServiceTestSuite) TestGenerateSubtasks_NotConfigured() {
	a := suite.create("A", nil)

	_, _, err := suite.service.GenerateSubtasks(context.Background(), a.ID, true)
	suite.ErrorIs(err, ErrAIServiceNotConfigured)
	suite.Equal(KindInvalidOperation, KindOf(err))
}

func (suite *TaskServiceTestSuite) TestGenerateSubtasks_PreviewOnly() {
	fake := &fakeSuggester{subtasks: []SuggestedSubtask{{Title: "one", Priority: models.PriorityLow}}}
	suite.service.suggester = fake
	a := suite.create("A", nil)

	suggestions, created, err := suite.service.GenerateSubtasks(context.Background(), a.ID, false)
	suite.Require().NoError(err)
	suite.Len(suggestions, 1)
	suite.Empty(created)
	suite.Equal(a.ID, fake.seen.ID)

	children, err := suite.service.GetChildTasks(a.ID)
	suite.Require().NoError(err)
	suite.Empty(children)
}

func (suite *TaskServiceTestSuite) TestGenerateSubtasks_CreatesChildren() {
	suite.service.suggester = &fakeSuggester{subtasks: []SuggestedSubtask{
		{Title: "one", Priority: models.PriorityLow},
		{Title: "two", Priority: models.PriorityHigh},
	}}
	a := suite.create("A", nil)
	suite.create("existing", a)

	_, created, err := suite.service.GenerateSubtasks(context.Background(), a.ID, true)
	suite.Require().NoError(err)
	suite.Require().Len(created, 2)
	suite.Equal(2, created[0].ColumnLevel)

	children, err := suite.service.GetChildTasks(a.ID)
	suite.Require().NoError(err)
	suite.Equal([]string{"existing", "one", "two"}, viewTitles(children))
	suite.Equal(3, children[2].PositionOrder)
	suite.assertLevels()
}

func (suite *TaskServiceTestSuite) TestGenerateSubtasks_Failures() {
	fake := &fakeSuggester{}
	suite.service.suggester = fake
	a := suite.create("A", nil)

	_, _, err := suite.service.GenerateSubtasks(context.Background(), a.ID, true)
	suite.ErrorIs(err, ErrAINoSubtasks)

	fake.err = errors.New("OpenAI API error: boom")
	_, _, err = suite.service.GenerateSubtasks(context.Background(), a.ID, true)
	suite.Error(err)
	suite.Equal(KindBackend, KindOf(err))

	_, _, err = suite.service.GenerateSubtasks(context.Background(), 999, true)
	suite.ErrorIs(err, ErrTaskNotFound)
}
