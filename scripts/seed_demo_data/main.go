package main

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/koinoniahq/koinonia/model"
	"github.com/koinoniahq/koinonia/utils"
)

// Seeds a local database with a small community so the API can be poked at
// without a frontend. Run against a dev database only.
func main() {
	db, err := utils.GetDefaultDBConnection()
	if err != nil {
		log.Fatal("cannot connect to database: ", err)
	}
	utils.DatabaseSetupAndMigration(db)

	users := []model.User{}
	for _, name := range []string{"Maria", "Jonas", "Eva", "Samuel", "Ruth"} {
		user := model.User{
			Id:       uuid.New().String(),
			Name:     name,
			Username: fmt.Sprintf("%s_demo", name),
		}
		if err := db.Create(&user).Error; err != nil {
			log.Fatal("cannot create user: ", err)
		}
		users = append(users, user)
	}

	groups := []model.Group{}
	for _, name := range []string{"Youth Group", "Choir", "Bible Study"} {
		group := model.Group{
			Id:   uuid.New().String(),
			Name: name,
		}
		if err := db.Create(&group).Error; err != nil {
			log.Fatal("cannot create group: ", err)
		}
		if err := db.Create(&model.ChatroomSetting{GroupID: group.Id, IsActive: true}).Error; err != nil {
			log.Fatal("cannot create chatroom setting: ", err)
		}
		groups = append(groups, group)
	}

	memberships := []model.GroupMembership{
		{UserID: users[0].Id, GroupID: groups[0].Id},
		{UserID: users[1].Id, GroupID: groups[0].Id},
		{UserID: users[1].Id, GroupID: groups[1].Id},
		{UserID: users[2].Id, GroupID: groups[1].Id},
		{UserID: users[3].Id, GroupID: groups[2].Id},
	}
	for _, membership := range memberships {
		if err := db.Create(&membership).Error; err != nil {
			log.Fatal("cannot create membership: ", err)
		}
	}

	category := model.Category{
		Id:     uuid.New().String(),
		Name:   "Volunteer of the Year",
		IsOpen: true,
	}
	if err := db.Create(&category).Error; err != nil {
		log.Fatal("cannot create category: ", err)
	}
	for _, name := range []string{"Maria", "Samuel"} {
		if err := db.Create(&model.Contestant{
			Id:         uuid.New().String(),
			CategoryID: category.Id,
			Name:       name,
		}).Error; err != nil {
			log.Fatal("cannot create contestant: ", err)
		}
	}

	fmt.Printf("seeded %d users, %d groups, 1 category\n", len(users), len(groups))
}
