package server

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/koinoniahq/koinonia/app_setting"
	"github.com/koinoniahq/koinonia/model"
	"github.com/koinoniahq/koinonia/utils"
	"gorm.io/gorm"
)

/*

Directory endpoints for users and organizations. Both share one shape:

empty query -> "suggested" mode: entities not yet followed by the requester,
ranked by follower count descending (stable), capped. When the primary list
comes up short it is backfilled with already-followed entities, same order.

non-empty query -> case-insensitive substring match, alphabetical,
capped at the search limit. Followed status is annotated when the caller
supplied a userId. User search always excludes the requester.

*/

type DirectoryUser struct {
	Id            string `json:"id"`
	Name          string `json:"name"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	AvatarUrl     string `json:"avatarUrl"`
	Bio           string `json:"bio"`
	FollowerCount int64  `json:"followerCount"`
	IsFollowing   bool   `json:"isFollowing"`
}

type DirectoryOrganization struct {
	Id            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	AvatarUrl     string `json:"avatarUrl"`
	FollowerCount int64  `json:"followerCount"`
	IsFollowing   bool   `json:"isFollowing"`
}

func userFollowingSet(db *gorm.DB, userId string) map[string]bool {
	following := map[string]bool{}
	if userId == "" {
		return following
	}
	var edges []model.UserFollow
	db.Where("user_id = ?", userId).Find(&edges)
	for _, e := range edges {
		following[e.FollowingID] = true
	}
	return following
}

func orgFollowingSet(db *gorm.DB, userId string) map[string]bool {
	following := map[string]bool{}
	if userId == "" {
		return following
	}
	var edges []model.OrganizationFollow
	db.Where("user_id = ?", userId).Find(&edges)
	for _, e := range edges {
		following[e.OrganizationID] = true
	}
	return following
}

// rankWithBackfill orders the not-yet-followed entries by popularity, then
// appends the already-followed ones until the cap is reached.
func rankWithBackfill(primary, followed []int, popularity func(int) int64, limit int) []int {
	sort.SliceStable(primary, func(i, j int) bool {
		return popularity(primary[i]) > popularity(primary[j])
	})
	sort.SliceStable(followed, func(i, j int) bool {
		return popularity(followed[i]) > popularity(followed[j])
	})
	out := primary
	if len(out) < limit {
		out = append(out, followed[:utils.Min(limit-len(out), len(followed))]...)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// toDirectoryUsers maps models to directory entries with follower counts.
func toDirectoryUsers(db *gorm.DB, users []model.User) []DirectoryUser {
	results := []DirectoryUser{}
	for i := range users {
		var entry DirectoryUser
		copier.Copy(&entry, &users[i])
		db.Model(&model.UserFollow{}).Where("following_id = ?", users[i].Id).Count(&entry.FollowerCount)
		results = append(results, entry)
	}
	return results
}

// SearchUsersHandler serves GET /api/users/search?q=&userId=.
func SearchUsersHandler(db *gorm.DB, setting app_setting.KoinoniaAppSetting) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Query("q")
		userId := c.Query("userId")
		following := userFollowingSet(db, userId)

		var users []model.User
		if q == "" {
			if err := db.Order("created_at").Find(&users).Error; err != nil {
				internalError(c, err)
				return
			}
		} else {
			pattern := "%" + q + "%"
			err := db.Where("name ILIKE ? OR username ILIKE ? OR email ILIKE ?", pattern, pattern, pattern).
				Order("name").
				Limit(setting.DIRECTORY_SEARCH_LIMIT + 1).
				Find(&users).Error
			if err != nil {
				internalError(c, err)
				return
			}
		}

		results := []DirectoryUser{}
		for i := range users {
			if users[i].Id == userId {
				continue
			}
			var entry DirectoryUser
			copier.Copy(&entry, &users[i])
			db.Model(&model.UserFollow{}).Where("following_id = ?", users[i].Id).Count(&entry.FollowerCount)
			entry.IsFollowing = following[users[i].Id]
			results = append(results, entry)
		}

		if q == "" {
			var primary, followed []int
			for i := range results {
				if results[i].IsFollowing {
					followed = append(followed, i)
				} else {
					primary = append(primary, i)
				}
			}
			picked := rankWithBackfill(primary, followed, func(i int) int64 {
				return results[i].FollowerCount
			}, setting.DIRECTORY_SUGGEST_LIMIT)
			ranked := make([]DirectoryUser, 0, len(picked))
			for _, i := range picked {
				ranked = append(ranked, results[i])
			}
			results = ranked
		} else if len(results) > setting.DIRECTORY_SEARCH_LIMIT {
			results = results[:setting.DIRECTORY_SEARCH_LIMIT]
		}

		c.JSON(http.StatusOK, gin.H{"users": results})
	}
}

// SearchOrganizationsHandler serves GET /api/organizations/search?q=&userId=.
func SearchOrganizationsHandler(db *gorm.DB, setting app_setting.KoinoniaAppSetting) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Query("q")
		userId := c.Query("userId")
		following := orgFollowingSet(db, userId)

		var orgs []model.Organization
		if q == "" {
			if err := db.Order("created_at").Find(&orgs).Error; err != nil {
				internalError(c, err)
				return
			}
		} else {
			err := db.Where("name ILIKE ?", "%"+q+"%").
				Order("name").
				Limit(setting.DIRECTORY_SEARCH_LIMIT).
				Find(&orgs).Error
			if err != nil {
				internalError(c, err)
				return
			}
		}

		results := []DirectoryOrganization{}
		for i := range orgs {
			var entry DirectoryOrganization
			copier.Copy(&entry, &orgs[i])
			db.Model(&model.OrganizationFollow{}).Where("organization_id = ?", orgs[i].Id).Count(&entry.FollowerCount)
			entry.IsFollowing = following[orgs[i].Id]
			results = append(results, entry)
		}

		if q == "" {
			var primary, followed []int
			for i := range results {
				if results[i].IsFollowing {
					followed = append(followed, i)
				} else {
					primary = append(primary, i)
				}
			}
			picked := rankWithBackfill(primary, followed, func(i int) int64 {
				return results[i].FollowerCount
			}, setting.DIRECTORY_SUGGEST_LIMIT)
			ranked := make([]DirectoryOrganization, 0, len(picked))
			for _, i := range picked {
				ranked = append(ranked, results[i])
			}
			results = ranked
		}

		c.JSON(http.StatusOK, gin.H{"organizations": results})
	}
}
