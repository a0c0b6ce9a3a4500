package app_setting

import (
	"io/ioutil"
	"log"

	"gopkg.in/yaml.v2"
)

// This is the tunables config for the koinonia services. Every value has a
// compiled-in default matching the original product behavior, so the YAML
// file only needs to list the values being overridden.
type KoinoniaAppSetting struct {
	// A user counts as present in a chatroom when the last heartbeat is
	// within this trailing window.
	PRESENCE_WINDOW_SECOND int64 `yaml:"PRESENCE_WINDOW_SECOND"`
	// Interval hints returned to clients for the chat / notification
	// polling loops.
	CHAT_POLL_INTERVAL_SECOND         int64 `yaml:"CHAT_POLL_INTERVAL_SECOND"`
	NOTIFICATION_POLL_INTERVAL_SECOND int64 `yaml:"NOTIFICATION_POLL_INTERVAL_SECOND"`
	// Result caps for the suggestion aggregator.
	SUGGESTED_USER_LIMIT  int `yaml:"SUGGESTED_USER_LIMIT"`
	SUGGESTED_GROUP_LIMIT int `yaml:"SUGGESTED_GROUP_LIMIT"`
	// Result caps for the directory endpoints.
	DIRECTORY_SUGGEST_LIMIT int `yaml:"DIRECTORY_SUGGEST_LIMIT"`
	DIRECTORY_SEARCH_LIMIT  int `yaml:"DIRECTORY_SEARCH_LIMIT"`
	// The cleaner deletes questions and messages older than this many days.
	RETENTION_DAYS int `yaml:"RETENTION_DAYS"`
}

func DefaultKoinoniaAppSetting() KoinoniaAppSetting {
	return KoinoniaAppSetting{
		PRESENCE_WINDOW_SECOND:            300,
		CHAT_POLL_INTERVAL_SECOND:         3,
		NOTIFICATION_POLL_INTERVAL_SECOND: 30,
		SUGGESTED_USER_LIMIT:              10,
		SUGGESTED_GROUP_LIMIT:             5,
		DIRECTORY_SUGGEST_LIMIT:           10,
		DIRECTORY_SEARCH_LIMIT:            20,
		RETENTION_DAYS:                    30,
	}
}

func ParseKoinoniaAppSetting(path string) KoinoniaAppSetting {
	c := DefaultKoinoniaAppSetting()
	yamlFile, err := ioutil.ReadFile(path)
	if err != nil {
		log.Fatal("yamlFile. get err: ", err.Error())
	}
	err = yaml.Unmarshal(yamlFile, &c)
	if err != nil {
		log.Fatal("Unmarshal: ", err)
	}
	return c
}

// LoadKoinoniaAppSetting returns the defaults when no path is given.
func LoadKoinoniaAppSetting(path string) KoinoniaAppSetting {
	if path == "" {
		return DefaultKoinoniaAppSetting()
	}
	return ParseKoinoniaAppSetting(path)
}
