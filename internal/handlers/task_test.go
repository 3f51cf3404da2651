package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/column-task-api/internal/models"
	"github.com/yukikurage/column-task-api/internal/repository"
	"github.com/yukikurage/column-task-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

type stubSuggester struct{}

func (stubSuggester) SuggestSubtasks(_ context.Context, task *models.Task) ([]services.SuggestedSubtask, error) {
	return []services.SuggestedSubtask{
		{Title: task.Title + " step 1", Priority: models.PriorityLow},
		{Title: task.Title + " step 2", Priority: models.PriorityMedium},
	}, nil
}

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(suite.db.AutoMigrate(&models.Task{}, &models.ProviderToken{}))

	taskService := services.NewTaskService(repository.NewTaskRepository(suite.db), stubSuggester{}, 0)
	providerService := services.NewProviderService(repository.NewTokenRepository(suite.db))
	handler := NewTaskHandler(taskService, providerService, nil)

	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.router.GET("/api/tasks", handler.Handle)
	suite.router.POST("/api/tasks", handler.Handle)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskHandlerTestSuite) post(action string, body map[string]interface{}) (int, envelope) {
	payload, err := json.Marshal(body)
	suite.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks?action="+action, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return suite.do(req)
}

func (suite *TaskHandlerTestSuite) get(action string, params url.Values) (int, envelope) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("action", action)
	return suite.do(httptest.NewRequest(http.MethodGet, "/api/tasks?"+params.Encode(), nil))
}

func (suite *TaskHandlerTestSuite) do(req *http.Request) (int, envelope) {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var resp envelope
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func (suite *TaskHandlerTestSuite) createTask(title string, parentID uint64) uint64 {
	body := map[string]interface{}{"title": title}
	if parentID != 0 {
		body["parent_id"] = parentID
	}
	code, resp := suite.post("create", body)
	suite.Require().Equal(http.StatusOK, code, resp.Message)

	var task struct {
		ID uint64 `json:"id"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Data, &task))
	return task.ID
}

func (suite *TaskHandlerTestSuite) TestCreateAndGet() {
	code, resp := suite.post("create", map[string]interface{}{
		"title":       "Write report",
		"description": "quarterly",
		"priority":    "HIGH",
	})
	suite.Equal(http.StatusOK, code)
	suite.True(resp.Success)
	suite.Equal("Task created", resp.Message)

	var created struct {
		ID          uint64  `json:"id"`
		ParentID    *uint64 `json:"parent_id"`
		ColumnLevel int     `json:"column_level"`
		Priority    string  `json:"priority"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Data, &created))
	suite.Nil(created.ParentID)
	suite.Equal(1, created.ColumnLevel)
	suite.Equal("high", created.Priority)

	code, resp = suite.get("get", url.Values{"id": {fmt.Sprint(created.ID)}})
	suite.Equal(http.StatusOK, code)
	suite.Contains(string(resp.Data), `"title":"Write report"`)
}

func (suite *TaskHandlerTestSuite) TestActionInBody() {
	payload := `{"action":"create","title":"from body"}`
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	code, resp := suite.do(req)
	suite.Equal(http.StatusOK, code)
	suite.True(resp.Success)
}

func (suite *TaskHandlerTestSuite) TestFormBody() {
	form := url.Values{"action": {"create"}, "title": {"from form"}, "parent_id": {""}}
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	code, resp := suite.do(req)
	suite.Equal(http.StatusOK, code, resp.Message)
	suite.Contains(string(resp.Data), `"column_level":1`)
}

func (suite *TaskHandlerTestSuite) TestInvalidAction() {
	code, resp := suite.get("explode", nil)
	suite.Equal(http.StatusBadRequest, code)
	suite.False(resp.Success)
	suite.Equal("invalid action", resp.Message)

	code, resp = suite.get("", nil)
	suite.Equal(http.StatusBadRequest, code)
	suite.False(resp.Success)
}

func (suite *TaskHandlerTestSuite) TestErrorKinds() {
	code, resp := suite.post("create", map[string]interface{}{"title": ""})
	suite.Equal(http.StatusBadRequest, code)
	suite.False(resp.Success)
	suite.Equal(services.ErrTitleRequired.Error(), resp.Message)

	code, resp = suite.post("create", map[string]interface{}{"title": "x", "parent_id": 999})
	suite.Equal(http.StatusNotFound, code)
	suite.Equal(services.ErrParentNotFound.Error(), resp.Message)

	code, resp = suite.get("get", nil)
	suite.Equal(http.StatusBadRequest, code)
	suite.Equal("id is required", resp.Message)

	id := suite.createTask("A", 0)
	code, resp = suite.post("update_parent", map[string]interface{}{"id": id, "parent_id": id})
	suite.Equal(http.StatusConflict, code)
	suite.Equal(services.ErrMoveIntoSelf.Error(), resp.Message)
}

func (suite *TaskHandlerTestSuite) TestColumnsAndTree() {
	a := suite.createTask("A", 0)
	b := suite.createTask("B", a)
	suite.createTask("C", b)

	_, resp := suite.get("get_root_tasks", nil)
	var roots []struct {
		Title       string `json:"title"`
		HasChildren bool   `json:"has_children"`
		ChildCount  int64  `json:"child_count"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Data, &roots))
	suite.Require().Len(roots, 1)
	suite.True(roots[0].HasChildren)
	suite.Equal(int64(1), roots[0].ChildCount)

	_, resp = suite.get("get_column_structure", nil)
	suite.Require().NoError(json.Unmarshal(resp.Data, &roots))
	suite.Len(roots, 1)

	_, resp = suite.get("get_children", url.Values{"parent_id": {fmt.Sprint(a)}})
	var children []struct {
		Title string `json:"title"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Data, &children))
	suite.Require().Len(children, 1)
	suite.Equal("B", children[0].Title)

	_, resp = suite.get("get_task_tree", url.Values{"id": {fmt.Sprint(a)}})
	type node struct {
		Title    string `json:"title"`
		Children []node `json:"children"`
	}
	var tree node
	suite.Require().NoError(json.Unmarshal(resp.Data, &tree))
	suite.Equal("A", tree.Title)
	suite.Require().Len(tree.Children, 1)
	suite.Require().Len(tree.Children[0].Children, 1)
	suite.Equal("C", tree.Children[0].Children[0].Title)
	suite.NotNil(tree.Children[0].Children[0].Children)

	_, resp = suite.get("get_ancestors", url.Values{"id": {fmt.Sprint(b)}})
	suite.Contains(string(resp.Data), `"title":"A"`)

	_, resp = suite.get("get_by_level", url.Values{"level": {"3"}})
	suite.Contains(string(resp.Data), `"title":"C"`)
}

func (suite *TaskHandlerTestSuite) TestUpdateDeleteReportMissingRows() {
	code, resp := suite.post("update", map[string]interface{}{"id": 42, "title": "x"})
	suite.Equal(http.StatusNotFound, code)
	suite.False(resp.Success)

	code, resp = suite.post("delete", map[string]interface{}{"id": 42})
	suite.Equal(http.StatusNotFound, code)
	suite.False(resp.Success)

	code, resp = suite.post("update_position", map[string]interface{}{"id": 42, "position": 3})
	suite.Equal(http.StatusNotFound, code)
	suite.False(resp.Success)

	code, _ = suite.post("update_position", map[string]interface{}{"id": 42})
	suite.Equal(http.StatusBadRequest, code)
}

func (suite *TaskHandlerTestSuite) TestDeleteCascades() {
	a := suite.createTask("A", 0)
	b := suite.createTask("B", a)
	suite.createTask("C", b)

	code, resp := suite.post("delete", map[string]interface{}{"id": a})
	suite.Equal(http.StatusOK, code)
	suite.True(resp.Success)

	var count int64
	suite.db.Model(&models.Task{}).Count(&count)
	suite.Zero(count)
}

func (suite *TaskHandlerTestSuite) TestEnvelopeAlwaysCarriesData() {
	id := suite.createTask("A", 0)

	for _, action := range []string{"update_position", "delete"} {
		body, err := json.Marshal(map[string]interface{}{"id": id, "position": 2})
		suite.Require().NoError(err)

		req := httptest.NewRequest(http.MethodPost, "/api/tasks?action="+action, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)

		suite.Equal(http.StatusOK, w.Code, action)
		suite.Contains(w.Body.String(), `"data":null`, action)
	}
}

func (suite *TaskHandlerTestSuite) TestToggleComplete() {
	id := suite.createTask("A", 0)

	code, resp := suite.post("toggle_complete", map[string]interface{}{"id": id, "is_completed": true})
	suite.Equal(http.StatusOK, code)
	suite.Contains(string(resp.Data), `"is_completed":true`)

	code, resp = suite.post("toggle_complete", map[string]interface{}{"id": id, "is_completed": false})
	suite.Equal(http.StatusOK, code)
	suite.Contains(string(resp.Data), `"completed_at":null`)

	code, _ = suite.post("toggle_complete", map[string]interface{}{"id": id})
	suite.Equal(http.StatusBadRequest, code)
}

func (suite *TaskHandlerTestSuite) TestMoves() {
	a := suite.createTask("A", 0)
	b := suite.createTask("B", 0)
	c := suite.createTask("C", b)

	code, resp := suite.post("update_parent", map[string]interface{}{"id": b, "parent_id": a})
	suite.Equal(http.StatusOK, code, resp.Message)
	suite.Contains(string(resp.Data), `"column_level":2`)

	var child models.Task
	suite.Require().NoError(suite.db.First(&child, c).Error)
	suite.Equal(3, child.ColumnLevel)

	code, resp = suite.post("update_parent", map[string]interface{}{"id": b, "parent_id": nil})
	suite.Equal(http.StatusOK, code, resp.Message)
	suite.Contains(string(resp.Data), `"column_level":1`)

	code, resp = suite.post("move_relative", map[string]interface{}{"id": b, "target_id": a, "placement": "before"})
	suite.Equal(http.StatusOK, code, resp.Message)

	_, resp = suite.get("get_root_tasks", nil)
	var roots []struct {
		Title string `json:"title"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Data, &roots))
	suite.Require().Len(roots, 2)
	suite.Equal("B", roots[0].Title)

	code, _ = suite.post("move_relative", map[string]interface{}{"id": a, "target_id": c, "placement": "into"})
	suite.Equal(http.StatusOK, code)

	code, resp = suite.post("move_relative", map[string]interface{}{"id": b, "target_id": a, "placement": "into"})
	suite.Equal(http.StatusConflict, code)
	suite.Equal(services.ErrMoveIntoDescendant.Error(), resp.Message)

	code, _ = suite.post("move_relative", map[string]interface{}{"id": b, "target_id": a, "placement": "under"})
	suite.Equal(http.StatusBadRequest, code)
}

func (suite *TaskHandlerTestSuite) TestSearchFilterStats() {
	suite.createTask("Completar proyecto web", 0)
	code, resp := suite.post("create", map[string]interface{}{"title": "Urgent", "priority": "high"})
	suite.Require().Equal(http.StatusOK, code)

	_, resp = suite.get("search", url.Values{"term": {"proy"}})
	suite.Contains(string(resp.Data), "Completar proyecto web")

	_, resp = suite.get("search", url.Values{"term": {"zzz"}})
	suite.JSONEq(`[]`, string(resp.Data))

	code, _ = suite.get("search", nil)
	suite.Equal(http.StatusBadRequest, code)

	_, resp = suite.get("filter", url.Values{"priorities": {"high,low"}, "status": {"pending"}})
	var filtered []struct {
		Title string `json:"title"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Data, &filtered))
	suite.Require().Len(filtered, 1)
	suite.Equal("Urgent", filtered[0].Title)

	_, resp = suite.get("get_urgent", nil)
	suite.Contains(string(resp.Data), "Urgent")

	code, _ = suite.get("filter", url.Values{"level_min": {"3"}, "level_max": {"1"}})
	suite.Equal(http.StatusBadRequest, code)

	_, resp = suite.get("get_stats", nil)
	suite.JSONEq(`{"total":2,"completed":0,"pending":2,"max_depth":1}`, string(resp.Data))
}

func (suite *TaskHandlerTestSuite) TestExternalRefs() {
	code, resp := suite.post("create_from_mail", map[string]interface{}{
		"reference": "https://mail.google.com/mail/u/0/#inbox/18c2f0a9b7d3e4f1",
	})
	suite.Equal(http.StatusOK, code, resp.Message)
	suite.Contains(string(resp.Data), `"external_thread_id":"18c2f0a9b7d3e4f1"`)

	code, _ = suite.post("create_from_mail", map[string]interface{}{"reference": "nope"})
	suite.Equal(http.StatusBadRequest, code)

	id := suite.createTask("A", 0)
	code, resp = suite.post("attach_external", map[string]interface{}{"id": id, "external_event_id": "evt-9"})
	suite.Equal(http.StatusOK, code)
	suite.Contains(string(resp.Data), `"external_event_id":"evt-9"`)

	_, resp = suite.get("filter", url.Values{"has_external_ref": {"true"}})
	var linked []struct {
		Title string `json:"title"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Data, &linked))
	suite.Len(linked, 1)
}

func (suite *TaskHandlerTestSuite) TestSuggestSubtasks() {
	id := suite.createTask("Plan trip", 0)

	code, resp := suite.post("suggest_subtasks", map[string]interface{}{"id": id})
	suite.Equal(http.StatusOK, code, resp.Message)
	suite.Contains(string(resp.Data), "Plan trip step 1")

	code, resp = suite.post("suggest_subtasks", map[string]interface{}{"id": id, "create": true})
	suite.Equal(http.StatusOK, code, resp.Message)
	suite.Equal("Subtasks created", resp.Message)

	var count int64
	suite.db.Model(&models.Task{}).Where("parent_id = ?", id).Count(&count)
	suite.Equal(int64(2), count)
}

func (suite *TaskHandlerTestSuite) TestProviderStatus() {
	code, resp := suite.get("provider_status", nil)
	suite.Equal(http.StatusOK, code)
	suite.Contains(string(resp.Data), `"connected":false`)
	suite.Contains(string(resp.Data), `"provider":"google"`)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
