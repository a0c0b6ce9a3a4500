package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/koinoniahq/koinonia/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Fixture helpers shared by handler tests. Each helper seeds through the
// same GORM models the handlers use and fails the test on any storage error.

func TestCreateUser(t *testing.T, db *gorm.DB, name string, username string) *model.User {
	t.Helper()
	user := model.User{
		Id:       uuid.New().String(),
		Name:     name,
		Username: username,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func TestCreateOrganization(t *testing.T, db *gorm.DB, name string) *model.Organization {
	t.Helper()
	org := model.Organization{
		Id:   uuid.New().String(),
		Name: name,
	}
	require.NoError(t, db.Create(&org).Error)
	return &org
}

func TestCreateGroup(t *testing.T, db *gorm.DB, name string, orgId *string) *model.Group {
	t.Helper()
	group := model.Group{
		Id:             uuid.New().String(),
		Name:           name,
		OrganizationID: orgId,
	}
	require.NoError(t, db.Create(&group).Error)
	require.NoError(t, db.Create(&model.ChatroomSetting{GroupID: group.Id, IsActive: true}).Error)
	return &group
}

func TestJoinGroup(t *testing.T, db *gorm.DB, userId string, groupId string) {
	t.Helper()
	require.NoError(t, db.Create(&model.GroupMembership{UserID: userId, GroupID: groupId}).Error)
}

func TestFollowUser(t *testing.T, db *gorm.DB, followerId string, followingId string) {
	t.Helper()
	require.NoError(t, db.Create(&model.UserFollow{UserID: followerId, FollowingID: followingId}).Error)
}

func TestFollowOrganization(t *testing.T, db *gorm.DB, userId string, orgId string) {
	t.Helper()
	require.NoError(t, db.Create(&model.OrganizationFollow{UserID: userId, OrganizationID: orgId}).Error)
}

func TestCreateCategory(t *testing.T, db *gorm.DB, name string, isOpen bool, contestantNames ...string) *model.Category {
	t.Helper()
	category := model.Category{
		Id:     uuid.New().String(),
		Name:   name,
		IsOpen: isOpen,
	}
	require.NoError(t, db.Create(&category).Error)
	for _, contestantName := range contestantNames {
		require.NoError(t, db.Create(&model.Contestant{
			Id:         uuid.New().String(),
			CategoryID: category.Id,
			Name:       contestantName,
		}).Error)
	}
	require.NoError(t, db.Preload("Contestants").Where("id = ?", category.Id).First(&category).Error)
	return &category
}
