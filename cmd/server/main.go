package main

import (
	"context"
	"net/http"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/koinoniahq/koinonia/app_setting"
	"github.com/koinoniahq/koinonia/notifier"
	"github.com/koinoniahq/koinonia/server"
	"github.com/koinoniahq/koinonia/server/middlewares"
	"github.com/koinoniahq/koinonia/utils"
	"github.com/koinoniahq/koinonia/utils/dotenv"
	. "github.com/koinoniahq/koinonia/utils/flag"
	. "github.com/koinoniahq/koinonia/utils/log"
	gintrace "gopkg.in/DataDog/dd-trace-go.v1/contrib/gin-gonic/gin"
)

func cleanup() {
	utils.CloseProfiler()
	utils.CloseTracer()
	Log.Info("api server shutdown")
}

func newDogStatsdClient() *statsd.Client {
	client, err := statsd.New("127.0.0.1:8125")
	if err != nil {
		panic(err)
	}
	return client
}

func main() {
	defer cleanup()
	ParseFlags()
	InitLogger()

	if !utils.ContainsString([]string{APIServer, Cleaner}, *ServiceName) {
		Log.Fatal("unknown service name : ", *ServiceName)
	}

	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	utils.InitTracer()
	utils.InitProfiler()

	setting := app_setting.LoadKoinoniaAppSetting(*AppSetting)

	db, err := utils.GetDBConnection()
	if err != nil {
		Log.Fatal("fail to connect database : ", err)
	}
	utils.DatabaseSetupAndMigration(db)

	if !*ByPassAuth {
		middlewares.Setup()
	}

	// In-process event bus feeding the notification writer and the Datadog
	// reporter.
	bus := notifier.NewEventBus()
	ctx := context.Background()
	go notifier.RunModuleWithGracefulRestart(ctx, notifier.NewWriter(
		notifier.WriterConfig{Name: "notification_writer"}, db, bus))
	go notifier.RunModuleWithGracefulRestart(ctx, notifier.NewReporter(
		notifier.ReporterConfig{Name: "reporter"}, newDogStatsdClient(), bus))

	if !*IsDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()

	router.Use(cors.Default())
	router.Use(gintrace.Middleware(*ServiceName))

	api := router.Group("/api")

	// Suggestion aggregator and directory.
	api.GET("/suggestions", server.SuggestionsHandler(db, setting))
	api.GET("/users/search", server.SearchUsersHandler(db, setting))
	api.GET("/organizations/search", server.SearchOrganizationsHandler(db, setting))

	// Users and the follow graph.
	api.POST("/users", server.CreateUserHandler(db))
	api.GET("/users/:id", server.GetUserHandler(db))
	api.GET("/users/:id/followers", server.ListFollowersHandler(db))
	api.GET("/users/:id/following", server.ListFollowingHandler(db))
	api.POST("/users/:id/follow", server.FollowUserHandler(db, bus))
	api.DELETE("/users/:id/follow", server.UnfollowUserHandler(db))

	// Organizations.
	api.GET("/organizations/:id", server.GetOrganizationHandler(db))
	api.POST("/organizations/:id/follow", server.FollowOrganizationHandler(db, bus))
	api.DELETE("/organizations/:id/follow", server.UnfollowOrganizationHandler(db))

	// Groups, membership and chatrooms.
	api.GET("/groups", server.ListGroupsHandler(db))
	api.GET("/groups/:id", server.GetGroupHandler(db))
	api.POST("/groups/:id/join", server.JoinGroupHandler(db))
	api.DELETE("/groups/:id/join", server.LeaveGroupHandler(db))
	api.GET("/groups/:id/messages", server.ListMessagesHandler(db, setting))
	api.POST("/groups/:id/messages", server.PostMessageHandler(db, bus))
	api.GET("/groups/:id/questions", server.ListQuestionsHandler(db))
	api.POST("/groups/:id/questions", server.PostQuestionHandler(db))
	api.POST("/groups/:id/presence", server.HeartbeatHandler(db))
	api.GET("/groups/:id/presence", server.ListPresenceHandler(db, setting))

	// Voting.
	api.GET("/categories", server.ListCategoriesHandler(db))
	api.GET("/categories/:id/results", server.CategoryResultsHandler(db))
	api.POST("/votes", server.CastVoteHandler(db))

	// Events.
	api.GET("/events", server.ListEventsHandler(db))

	// Notifications.
	api.GET("/notifications", server.ListNotificationsHandler(db, setting))
	api.POST("/notifications/read", server.MarkNotificationsReadHandler(db))

	// Admin surface, gated by the verified session middleware.
	api.POST("/admin/login", server.AdminLoginHandler(db, middlewares.SessionStore()))
	admin := api.Group("/admin")
	if !*ByPassAuth {
		admin.Use(middlewares.AdminAuth())
	}
	admin.POST("/logout", server.AdminLogoutHandler(middlewares.SessionStore()))
	admin.POST("/organizations", server.CreateOrganizationHandler(db))
	admin.POST("/groups", server.CreateGroupHandler(db))
	admin.PUT("/groups/:id/chatroom", server.UpdateChatroomHandler(db))
	admin.POST("/categories", server.CreateCategoryHandler(db))
	admin.PUT("/categories/:id", server.UpdateCategoryHandler(db))
	admin.POST("/categories/:id/contestants", server.AddContestantHandler(db))
	admin.DELETE("/contestants/:id", server.RemoveContestantHandler(db))
	admin.POST("/events", server.CreateEventHandler(db))
	admin.PUT("/events/:id", server.UpdateEventHandler(db))
	admin.DELETE("/events/:id", server.DeleteEventHandler(db))
	admin.POST("/questions/:id/answer", server.AnswerQuestionHandler(db, bus))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	Log.Info("api server starts up")
	router.Run(":8080")
}
