package model

import "time"

const (
	NotificationKindUserFollow       = "user_follow"
	NotificationKindOrgFollow        = "organization_follow"
	NotificationKindMessagePosted    = "message_posted"
	NotificationKindQuestionAnswered = "question_answered"
)

/*

Notification is a per-user inbox entry written by the notifier when a domain
event happens (someone followed you, your question got answered, ...)

UserID: recipient
Kind: one of the NotificationKind* constants
ActorID: user who triggered the event, optional
SubjectID: id of the entity the event is about (group, question, ...)
Body: pre-rendered display text
ReadAt: nil until the recipient marks the notification read

*/

type Notification struct {
	Id        string     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time  `json:"createdAt" gorm:"index"`
	UserID    string     `json:"userId" gorm:"index"`
	Kind      string     `json:"kind"`
	ActorID   *string    `json:"actorId"`
	SubjectID string     `json:"subjectId"`
	Body      string     `json:"body"`
	ReadAt    *time.Time `json:"readAt"`
}
