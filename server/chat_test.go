package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/koinoniahq/koinonia/app_setting"
	"github.com/koinoniahq/koinonia/model"
	"github.com/koinoniahq/koinonia/notifier"
	"github.com/koinoniahq/koinonia/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newChatRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	setting := app_setting.DefaultKoinoniaAppSetting()
	bus := notifier.NewEventBus()
	router.GET("/api/groups/:id/messages", ListMessagesHandler(db, setting))
	router.POST("/api/groups/:id/messages", PostMessageHandler(db, bus))
	router.GET("/api/groups/:id/questions", ListQuestionsHandler(db))
	router.POST("/api/groups/:id/questions", PostQuestionHandler(db))
	router.POST("/api/questions/:id/answer", AnswerQuestionHandler(db, bus))
	router.POST("/api/groups/:id/presence", HeartbeatHandler(db))
	router.GET("/api/groups/:id/presence", ListPresenceHandler(db, setting))
	router.PUT("/api/groups/:id/chatroom", UpdateChatroomHandler(db))
	return router
}

func getJSON(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	router.ServeHTTP(w, req)
	return w
}

func setChatroomActive(t *testing.T, db *gorm.DB, groupId string, active bool) {
	t.Helper()
	require.NoError(t, db.Model(&model.ChatroomSetting{}).
		Where("group_id = ?", groupId).
		Update("is_active", active).Error)
}

func TestInactiveChatroomBlocksWrites(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newChatRouter(db)

	author := utils.TestCreateUser(t, db, "Author", "author")
	group := utils.TestCreateGroup(t, db, "Quiet Room", nil)
	setChatroomActive(t, db, group.Id, false)
	body := fmt.Sprintf(`{"userId": %q, "content": "hello"}`, author.Id)

	w := postJSON(router, "POST", "/api/groups/"+group.Id+"/messages", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = postJSON(router, "POST", "/api/groups/"+group.Id+"/questions", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Reads stay open regardless of the gate.
	assert.Equal(t, http.StatusOK, getJSON(router, "/api/groups/"+group.Id+"/messages").Code)
	assert.Equal(t, http.StatusOK, getJSON(router, "/api/groups/"+group.Id+"/questions").Code)
}

func TestActiveChatroomAcceptsWrites(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newChatRouter(db)

	author := utils.TestCreateUser(t, db, "Author", "author")
	group := utils.TestCreateGroup(t, db, "Open Room", nil)
	body := fmt.Sprintf(`{"userId": %q, "content": "hello"}`, author.Id)

	w := postJSON(router, "POST", "/api/groups/"+group.Id+"/messages", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	var count int64
	db.Model(&model.Message{}).Where("group_id = ?", group.Id).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestChatroomToggle(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newChatRouter(db)

	author := utils.TestCreateUser(t, db, "Author", "author")
	group := utils.TestCreateGroup(t, db, "Room", nil)
	body := fmt.Sprintf(`{"userId": %q, "content": "hi"}`, author.Id)

	w := postJSON(router, "PUT", "/api/groups/"+group.Id+"/chatroom", `{"isActive": false}`)
	assert.Equal(t, http.StatusOK, w.Code)
	w = postJSON(router, "POST", "/api/groups/"+group.Id+"/messages", body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = postJSON(router, "PUT", "/api/groups/"+group.Id+"/chatroom", `{"isActive": true}`)
	assert.Equal(t, http.StatusOK, w.Code)
	w = postJSON(router, "POST", "/api/groups/"+group.Id+"/messages", body)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestMessagesSinceFilter(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newChatRouter(db)

	author := utils.TestCreateUser(t, db, "Author", "author")
	group := utils.TestCreateGroup(t, db, "Room", nil)
	old := model.Message{Id: "m-old", GroupID: group.Id, UserID: author.Id, Content: "old", CreatedAt: time.Now().Add(-time.Hour)}
	fresh := model.Message{Id: "m-new", GroupID: group.Id, UserID: author.Id, Content: "new", CreatedAt: time.Now()}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&fresh).Error)

	since := time.Now().Add(-time.Minute).Format(time.RFC3339)
	w := getJSON(router, "/api/groups/"+group.Id+"/messages?since="+since)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Messages           []model.Message `json:"messages"`
		PollIntervalSecond int64           `json:"pollIntervalSecond"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, "m-new", resp.Messages[0].Id)
	assert.Equal(t, int64(3), resp.PollIntervalSecond)
}

func TestMessagesBadSinceTimestamp(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newChatRouter(db)

	group := utils.TestCreateGroup(t, db, "Room", nil)
	w := getJSON(router, "/api/groups/"+group.Id+"/messages?since=yesterday")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostMessageNotifiesOtherMembers(t *testing.T) {
	db, _ := utils.CreateTempDB(t)

	author := utils.TestCreateUser(t, db, "Author", "author")
	listener := utils.TestCreateUser(t, db, "Listener", "listener")
	group := utils.TestCreateGroup(t, db, "Room", nil)
	utils.TestJoinGroup(t, db, author.Id, group.Id)
	utils.TestJoinGroup(t, db, listener.Id, group.Id)

	bus := notifier.NewEventBus()
	writer := notifier.NewWriter(notifier.WriterConfig{Name: "test_writer"}, db, bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifier.RunModuleWithGracefulRestart(ctx, writer)
	// The bus is not persistent, give the writer a moment to subscribe.
	time.Sleep(100 * time.Millisecond)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/groups/:id/messages", PostMessageHandler(db, bus))
	body := fmt.Sprintf(`{"userId": %q, "content": "hello"}`, author.Id)
	w := postJSON(router, "POST", "/api/groups/"+group.Id+"/messages", body)
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&model.Notification{}).
			Where("user_id = ? AND kind = ?", listener.Id, model.NotificationKindMessagePosted).
			Count(&count)
		return count == 1
	}, 2*time.Second, 20*time.Millisecond)

	// The author never hears about their own message.
	var authorCount int64
	db.Model(&model.Notification{}).Where("user_id = ?", author.Id).Count(&authorCount)
	assert.Equal(t, int64(0), authorCount)
}

func TestAnswerQuestionSetsAnswerFields(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newChatRouter(db)

	asker := utils.TestCreateUser(t, db, "Asker", "asker")
	admin := utils.TestCreateUser(t, db, "Admin", "admin")
	group := utils.TestCreateGroup(t, db, "Room", nil)

	body := fmt.Sprintf(`{"userId": %q, "content": "why?"}`, asker.Id)
	w := postJSON(router, "POST", "/api/groups/"+group.Id+"/questions", body)
	require.Equal(t, http.StatusCreated, w.Code)
	var created struct {
		Id string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	answer := fmt.Sprintf(`{"adminId": %q, "answer": "because"}`, admin.Id)
	w = postJSON(router, "POST", "/api/questions/"+created.Id+"/answer", answer)
	require.Equal(t, http.StatusOK, w.Code)

	var question model.Question
	require.NoError(t, db.Where("id = ?", created.Id).First(&question).Error)
	assert.Equal(t, "because", question.Answer)
	require.NotNil(t, question.AnsweredByID)
	assert.Equal(t, admin.Id, *question.AnsweredByID)
	assert.NotNil(t, question.AnsweredAt)
}

func TestPresenceWindow(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newChatRouter(db)

	group := utils.TestCreateGroup(t, db, "Room", nil)
	active := utils.TestCreateUser(t, db, "Active", "active")
	stale := utils.TestCreateUser(t, db, "Stale", "stale")

	body := fmt.Sprintf(`{"userId": %q}`, active.Id)
	w := postJSON(router, "POST", "/api/groups/"+group.Id+"/presence", body)
	assert.Equal(t, http.StatusOK, w.Code)
	// Heartbeats are idempotent upserts, repeating is fine.
	w = postJSON(router, "POST", "/api/groups/"+group.Id+"/presence", body)
	assert.Equal(t, http.StatusOK, w.Code)

	// A heartbeat outside the trailing window does not count.
	require.NoError(t, db.Create(&model.Presence{
		UserID:     stale.Id,
		GroupID:    group.Id,
		LastSeenAt: time.Now().Add(-10 * time.Minute),
	}).Error)

	w = getJSON(router, "/api/groups/"+group.Id+"/presence")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Present []DirectoryUser `json:"present"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Present, 1)
	assert.Equal(t, active.Id, resp.Present[0].Id)
}

func TestChatUnknownGroup(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newChatRouter(db)

	author := utils.TestCreateUser(t, db, "Author", "author")
	body := fmt.Sprintf(`{"userId": %q, "content": "hello"}`, author.Id)

	w := postJSON(router, "POST", "/api/groups/no-such-group/messages", body)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, getJSON(router, "/api/groups/no-such-group/messages").Code)
	assert.Equal(t, http.StatusNotFound, getJSON(router, "/api/groups/no-such-group/presence").Code)
}
