package server

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/koinoniahq/koinonia/app_setting"
	"github.com/koinoniahq/koinonia/model"
	Logger "github.com/koinoniahq/koinonia/utils/log"
	"gorm.io/gorm"
)

/*

Suggestion aggregator. Combines several weak signals into ranked
"people you may know" and "groups to follow" lists:

users:
 1. pool A: members of the requester's own groups, ranked by the number of
    distinct shared groups, descending. Stable sort keeps discovery order
    for ties.
 2. pool B (backfill): members of groups that followed users belong to,
    second degree, in discovery order, only when pool A did not fill the
    cap. Pool B candidates carry no mutual-group signal.

groups:
 1. pool A: groups of followed users the requester has not joined, ranked
    by member count descending.
 2. pool B (backfill): any remaining non-joined group, same ranking.

Both lists exclude the requester and anything already followed/joined.
Failure of an optional signal (the second-degree queries) is logged and
treated as an empty signal, the request still succeeds with what is left.

*/

type SuggestedUser struct {
	Id           string   `json:"id"`
	Name         string   `json:"name"`
	Username     string   `json:"username"`
	AvatarUrl    string   `json:"avatarUrl"`
	Bio          string   `json:"bio"`
	MutualGroups int      `json:"mutualGroups"`
	CommonGroups []string `json:"commonGroups"`
	IsFollowing  bool     `json:"isFollowing"`
}

type OrganizationSummary struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

type SuggestedGroup struct {
	Id           string               `json:"id"`
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Organization *OrganizationSummary `json:"organization"`
	MemberCount  int64                `json:"memberCount"`
}

// suggestUsers builds the ranked "people you may know" list for the given
// user, capped at limit.
func suggestUsers(db *gorm.DB, me *model.User, limit int) []SuggestedUser {
	following := map[string]bool{}
	var followingIds []string
	for _, f := range me.Following {
		following[f.Id] = true
		followingIds = append(followingIds, f.Id)
	}

	// Pool A: other members of my groups, ranked by mutual group count.
	type candidate struct {
		user         *model.User
		mutualGroups int
		commonGroups []string
	}
	var order []string
	byId := map[string]*candidate{}
	for _, group := range me.Groups {
		for i := range group.Members {
			member := group.Members[i]
			if member.Id == me.Id || following[member.Id] {
				continue
			}
			cand, ok := byId[member.Id]
			if !ok {
				cand = &candidate{user: member}
				byId[member.Id] = cand
				order = append(order, member.Id)
			}
			cand.mutualGroups += 1
			cand.commonGroups = append(cand.commonGroups, group.Name)
		}
	}

	candidates := make([]*candidate, 0, len(order))
	for _, id := range order {
		candidates = append(candidates, byId[id])
	}
	// Stable sort keeps discovery order for equal mutual counts, which makes
	// the result deterministic for identical underlying data.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].mutualGroups > candidates[j].mutualGroups
	})

	suggested := []SuggestedUser{}
	selected := map[string]bool{}
	for _, cand := range candidates {
		if len(suggested) >= limit {
			break
		}
		selected[cand.user.Id] = true
		suggested = append(suggested, SuggestedUser{
			Id:           cand.user.Id,
			Name:         cand.user.Name,
			Username:     cand.user.Username,
			AvatarUrl:    cand.user.AvatarUrl,
			Bio:          cand.user.Bio,
			MutualGroups: cand.mutualGroups,
			CommonGroups: cand.commonGroups,
			IsFollowing:  false,
		})
	}

	if len(suggested) >= limit || len(followingIds) == 0 {
		return suggested
	}

	// Pool B: second-degree candidates, members of groups the users I follow
	// belong to. No ranking signal beyond discovery order. An error here is a
	// degraded signal, not a request failure.
	var fellows []*model.User
	err := db.Model(&model.User{}).
		Joins("JOIN group_memberships ON group_memberships.user_id = users.id").
		Where("group_memberships.group_id IN (?)",
			db.Model(&model.GroupMembership{}).Select("group_id").Where("user_id IN ?", followingIds)).
		Order("group_memberships.created_at").
		Find(&fellows).Error
	if err != nil {
		Logger.Log.Warn("second-degree user signal unavailable: ", err)
		return suggested
	}

	for _, fellow := range fellows {
		if len(suggested) >= limit {
			break
		}
		if fellow.Id == me.Id || following[fellow.Id] || selected[fellow.Id] {
			continue
		}
		selected[fellow.Id] = true
		suggested = append(suggested, SuggestedUser{
			Id:           fellow.Id,
			Name:         fellow.Name,
			Username:     fellow.Username,
			AvatarUrl:    fellow.AvatarUrl,
			Bio:          fellow.Bio,
			MutualGroups: 0,
			CommonGroups: []string{},
			IsFollowing:  false,
		})
	}

	return suggested
}

// suggestGroups builds the ranked group list for the given user, capped at
// limit. Groups are ranked by member count, descending, first from the
// followed users' groups, then backfilled from the global remainder.
func suggestGroups(db *gorm.DB, me *model.User, limit int) []SuggestedGroup {
	myGroupIds := map[string]bool{}
	for _, g := range me.Groups {
		myGroupIds[g.Id] = true
	}
	var followingIds []string
	for _, f := range me.Following {
		followingIds = append(followingIds, f.Id)
	}

	suggested := []SuggestedGroup{}
	selected := map[string]bool{}

	appendRanked := func(groups []model.Group) {
		ranked := make([]SuggestedGroup, 0, len(groups))
		for i := range groups {
			group := &groups[i]
			if myGroupIds[group.Id] || selected[group.Id] {
				continue
			}
			var memberCount int64
			db.Model(&model.GroupMembership{}).Where("group_id = ?", group.Id).Count(&memberCount)
			var org *OrganizationSummary
			if group.Organization != nil {
				org = &OrganizationSummary{Id: group.Organization.Id, Name: group.Organization.Name}
			}
			ranked = append(ranked, SuggestedGroup{
				Id:           group.Id,
				Name:         group.Name,
				Description:  group.Description,
				Organization: org,
				MemberCount:  memberCount,
			})
		}
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].MemberCount > ranked[j].MemberCount
		})
		for _, g := range ranked {
			if len(suggested) >= limit {
				break
			}
			selected[g.Id] = true
			suggested = append(suggested, g)
		}
	}

	// Pool A: groups the users I follow belong to.
	if len(followingIds) > 0 {
		var groups []model.Group
		err := db.Preload("Organization").
			Joins("JOIN group_memberships ON group_memberships.group_id = groups.id").
			Where("group_memberships.user_id IN ?", followingIds).
			Distinct("groups.*").
			Order("groups.created_at").
			Find(&groups).Error
		if err != nil {
			Logger.Log.Warn("followed-users group signal unavailable: ", err)
		} else {
			appendRanked(groups)
		}
	}

	// Pool B: backfill from every remaining group.
	if len(suggested) < limit {
		var groups []model.Group
		err := db.Preload("Organization").Order("created_at").Find(&groups).Error
		if err != nil {
			Logger.Log.Warn("group backfill signal unavailable: ", err)
			return suggested
		}
		appendRanked(groups)
	}

	return suggested
}

// SuggestionsHandler serves GET /api/suggestions?userId=<id>.
func SuggestionsHandler(db *gorm.DB, setting app_setting.KoinoniaAppSetting) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.Query("userId")
		if userId == "" {
			badRequest(c, "User ID is required")
			return
		}

		// Deterministic preload ordering keeps discovery order stable across
		// identical runs.
		var me model.User
		queryResult := db.
			Preload("Groups", func(db *gorm.DB) *gorm.DB { return db.Order("groups.created_at") }).
			Preload("Groups.Members", func(db *gorm.DB) *gorm.DB { return db.Order("users.created_at") }).
			Preload("Groups.Organization").
			Preload("Following", func(db *gorm.DB) *gorm.DB { return db.Order("users.created_at") }).
			Where("id = ?", userId).First(&me)
		if queryResult.RowsAffected != 1 {
			notFound(c, "user not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"users":  suggestUsers(db, &me, setting.SUGGESTED_USER_LIMIT),
			"groups": suggestGroups(db, &me, setting.SUGGESTED_GROUP_LIMIT),
		})
	}
}
