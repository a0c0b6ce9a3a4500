package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/koinoniahq/koinonia/model"
	"github.com/koinoniahq/koinonia/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterPersistsDomainEvents(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	recipient := utils.TestCreateUser(t, db, "Recipient", "recipient")
	actor := utils.TestCreateUser(t, db, "Actor", "actor")

	bus := NewEventBus()
	writer := NewWriter(WriterConfig{Name: "test_writer"}, db, bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go RunModuleWithGracefulRestart(ctx, writer)
	// The bus is not persistent, give the writer a moment to subscribe.
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, Publish(bus, Event{
		Kind:        model.NotificationKindUserFollow,
		RecipientID: recipient.Id,
		ActorID:     &actor.Id,
		SubjectID:   actor.Id,
		Body:        "Actor followed you",
	}))

	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&model.Notification{}).Where("user_id = ?", recipient.Id).Count(&count)
		return count == 1
	}, 2*time.Second, 20*time.Millisecond)

	var notification model.Notification
	require.NoError(t, db.Where("user_id = ?", recipient.Id).First(&notification).Error)
	assert.Equal(t, model.NotificationKindUserFollow, notification.Kind)
	require.NotNil(t, notification.ActorID)
	assert.Equal(t, actor.Id, *notification.ActorID)
	assert.Equal(t, "Actor followed you", notification.Body)
	assert.Nil(t, notification.ReadAt)
}

func TestWriterSkipsEventWithoutRecipient(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	recipient := utils.TestCreateUser(t, db, "Recipient", "recipient")

	bus := NewEventBus()
	writer := NewWriter(WriterConfig{Name: "test_writer"}, db, bus)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go RunModuleWithGracefulRestart(ctx, writer)
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, Publish(bus, Event{
		Kind: model.NotificationKindUserFollow,
		Body: "nobody to tell",
	}))
	require.NoError(t, Publish(bus, Event{
		Kind:        model.NotificationKindOrgFollow,
		RecipientID: recipient.Id,
		SubjectID:   "org-1",
		Body:        "new follower",
	}))

	// The second event arrives after the first, so once it lands we know the
	// recipient-less one was dropped rather than still in flight.
	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&model.Notification{}).Count(&count)
		return count == 1
	}, 2*time.Second, 20*time.Millisecond)

	var notification model.Notification
	require.NoError(t, db.First(&notification).Error)
	assert.Equal(t, recipient.Id, notification.UserID)
}
