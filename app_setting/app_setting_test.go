package app_setting

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadWithoutPathReturnsDefaults(t *testing.T) {
	setting := LoadKoinoniaAppSetting("")
	assert.Equal(t, int64(300), setting.PRESENCE_WINDOW_SECOND)
	assert.Equal(t, int64(3), setting.CHAT_POLL_INTERVAL_SECOND)
	assert.Equal(t, int64(30), setting.NOTIFICATION_POLL_INTERVAL_SECOND)
	assert.Equal(t, 10, setting.SUGGESTED_USER_LIMIT)
	assert.Equal(t, 5, setting.SUGGESTED_GROUP_LIMIT)
	assert.Equal(t, 10, setting.DIRECTORY_SUGGEST_LIMIT)
	assert.Equal(t, 20, setting.DIRECTORY_SEARCH_LIMIT)
	assert.Equal(t, 30, setting.RETENTION_DAYS)
}

func TestParseOverridesOnlyListedValues(t *testing.T) {
	setting := ParseKoinoniaAppSetting("testdata/override.yaml")
	assert.Equal(t, int64(60), setting.PRESENCE_WINDOW_SECOND)
	assert.Equal(t, 7, setting.RETENTION_DAYS)
	// Everything not in the file keeps its default.
	assert.Equal(t, int64(3), setting.CHAT_POLL_INTERVAL_SECOND)
	assert.Equal(t, 10, setting.SUGGESTED_USER_LIMIT)
}
