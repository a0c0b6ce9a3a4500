package model

import (
	"time"

	"gorm.io/gorm"
)

// ChatroomSetting gates write access to a group's chatroom. Reads are always
// permitted regardless of the flag.
type ChatroomSetting struct {
	GroupID   string    `json:"groupId" gorm:"primaryKey"`
	IsActive  bool      `json:"isActive"`
	UpdatedAt time.Time `json:"updatedAt"`
}

/*

Message is a chat message posted to a group's chatroom

Id: primary key
GroupID: chatroom the message belongs to
UserID: author
Content: message body in plain text

*/

type Message struct {
	Id        string         `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"createdAt" gorm:"index"`
	DeletedAt gorm.DeletedAt `json:"-"`
	GroupID   string         `json:"groupId" gorm:"index"`
	UserID    string         `json:"userId"`
	User      User           `json:"user" gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Content   string         `json:"content"`
}

/*

Question is a Q&A entry posted to a group's chatroom

Answer and AnsweredByID stay empty until an admin answers. Questions older
than the retention window are swept by the cleaner job.

*/

type Question struct {
	Id           string         `json:"id" gorm:"primaryKey"`
	CreatedAt    time.Time      `json:"createdAt" gorm:"index"`
	DeletedAt    gorm.DeletedAt `json:"-"`
	GroupID      string         `json:"groupId" gorm:"index"`
	UserID       string         `json:"userId"`
	User         User           `json:"user" gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Content      string         `json:"content"`
	Answer       string         `json:"answer"`
	AnsweredByID *string        `json:"answeredById"`
	AnsweredAt   *time.Time     `json:"answeredAt"`
}

// Presence records the last heartbeat of a user inside a chatroom. A user is
// "present" when LastSeenAt falls inside the trailing presence window.
// Refreshed with an idempotent upsert keyed by the composite primary key.
type Presence struct {
	UserID     string    `json:"userId" gorm:"primaryKey"`
	GroupID    string    `json:"groupId" gorm:"primaryKey"`
	LastSeenAt time.Time `json:"lastSeenAt" gorm:"index"`
}
