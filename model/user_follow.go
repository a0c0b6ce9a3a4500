package model

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

/*

UserFollow is a "many-to-many" relation of a user following another user

UserID: the follower's user id
FollowingID: the followed user's id
CreatedAt: time when relation is created

The composite primary key guarantees a (follower, following) pair exists
at most once. A duplicate insert surfaces as a storage conflict.

*/

var ErrSelfFollow = errors.New("a user cannot follow themself")

type UserFollow struct {
	UserID      string `gorm:"primaryKey"`
	FollowingID string `gorm:"primaryKey"`
	CreatedAt   time.Time
}

func (f *UserFollow) BeforeCreate(db *gorm.DB) error {
	if f.UserID == f.FollowingID {
		return ErrSelfFollow
	}
	return nil
}
