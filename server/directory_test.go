package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/koinoniahq/koinonia/app_setting"
	"github.com/koinoniahq/koinonia/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDirectoryRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	setting := app_setting.DefaultKoinoniaAppSetting()
	router.GET("/api/users/search", SearchUsersHandler(db, setting))
	router.GET("/api/organizations/search", SearchOrganizationsHandler(db, setting))
	return router
}

func searchUsers(t *testing.T, router *gin.Engine, query string) []DirectoryUser {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/users/search"+query, nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Users []DirectoryUser `json:"users"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Users
}

func searchOrganizations(t *testing.T, router *gin.Engine, query string) []DirectoryOrganization {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/organizations/search"+query, nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Organizations []DirectoryOrganization `json:"organizations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Organizations
}

func TestOrganizationPopularityRanking(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newDirectoryRouter(db)

	// O has far more followers than P, the requester follows neither, so O
	// must rank first.
	requester := utils.TestCreateUser(t, db, "Requester", "requester")
	orgP := utils.TestCreateOrganization(t, db, "P")
	orgO := utils.TestCreateOrganization(t, db, "O")
	for i := 0; i < 8; i++ {
		fan := utils.TestCreateUser(t, db, fmt.Sprintf("Fan %d", i), fmt.Sprintf("fan%d", i))
		utils.TestFollowOrganization(t, db, fan.Id, orgO.Id)
	}
	lone := utils.TestCreateUser(t, db, "Lone", "lone")
	utils.TestFollowOrganization(t, db, lone.Id, orgP.Id)

	orgs := searchOrganizations(t, router, "?userId="+requester.Id)
	require.GreaterOrEqual(t, len(orgs), 2)
	assert.Equal(t, orgO.Id, orgs[0].Id)
	assert.Equal(t, int64(8), orgs[0].FollowerCount)
	assert.Equal(t, orgP.Id, orgs[1].Id)
}

func TestOrganizationBackfillWithFollowed(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newDirectoryRouter(db)

	requester := utils.TestCreateUser(t, db, "Requester", "requester")
	followed := utils.TestCreateOrganization(t, db, "Followed")
	fresh := utils.TestCreateOrganization(t, db, "Fresh")
	utils.TestFollowOrganization(t, db, requester.Id, followed.Id)

	orgs := searchOrganizations(t, router, "?userId="+requester.Id)
	require.Len(t, orgs, 2)
	// Not-yet-followed first, already-followed as backfill.
	assert.Equal(t, fresh.Id, orgs[0].Id)
	assert.False(t, orgs[0].IsFollowing)
	assert.Equal(t, followed.Id, orgs[1].Id)
	assert.True(t, orgs[1].IsFollowing)
}

func TestUserSearchExcludesRequester(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newDirectoryRouter(db)

	requester := utils.TestCreateUser(t, db, "Hannah", "hannah")
	utils.TestCreateUser(t, db, "Hannes", "hannes")

	users := searchUsers(t, router, "?q=hann&userId="+requester.Id)
	require.Len(t, users, 1)
	assert.Equal(t, "hannes", users[0].Username)
}

func TestUserSearchSubstringAlphabetical(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newDirectoryRouter(db)

	utils.TestCreateUser(t, db, "Zeb Miller", "zeb")
	utils.TestCreateUser(t, db, "Amy Miller", "amy")
	utils.TestCreateUser(t, db, "Unrelated", "unrelated")

	users := searchUsers(t, router, "?q=miller")
	require.Len(t, users, 2)
	assert.Equal(t, "Amy Miller", users[0].Name)
	assert.Equal(t, "Zeb Miller", users[1].Name)
}

func TestUserSearchCaseInsensitive(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newDirectoryRouter(db)

	utils.TestCreateUser(t, db, "Deborah", "deborah")

	users := searchUsers(t, router, "?q=DEBO")
	require.Len(t, users, 1)
	assert.Equal(t, "deborah", users[0].Username)
}

func TestUserSuggestModeCapAndPopularity(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newDirectoryRouter(db)

	requester := utils.TestCreateUser(t, db, "Requester", "requester")
	star := utils.TestCreateUser(t, db, "Star", "star")
	for i := 0; i < 12; i++ {
		fan := utils.TestCreateUser(t, db, fmt.Sprintf("Fan %d", i), fmt.Sprintf("fan%d", i))
		utils.TestFollowUser(t, db, fan.Id, star.Id)
	}

	users := searchUsers(t, router, "?userId="+requester.Id)
	assert.Len(t, users, 10)
	assert.Equal(t, star.Id, users[0].Id)
	assert.Equal(t, int64(12), users[0].FollowerCount)
	for _, u := range users {
		assert.NotEqual(t, requester.Id, u.Id)
	}
}
