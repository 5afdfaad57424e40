package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Johaan1835/TestMatrix/internal/middleware"
	"github.com/Johaan1835/TestMatrix/internal/service"
)

// RegisterRoutes mounts every handler on the app. Login and health are
// public; everything else runs behind the bearer-token middleware.
func RegisterRoutes(app *fiber.App,
	client *mongo.Client,
	jwtSecret []byte,
	authSvc *service.AuthService,
	userSvc *service.UserService,
	testCaseSvc *service.TestCaseService,
	planSvc *service.PlanService,
	bugSvc *service.BugService,
) {
	auth := middleware.Authenticate(jwtSecret)

	NewHealthHandler(client).Register(app)
	NewAuthHandler(authSvc).Register(app)
	NewUserHandler(userSvc).Register(app, auth)
	NewTestCaseHandler(testCaseSvc).Register(app, auth)
	NewPlanHandler(planSvc).Register(app, auth)
	NewBugHandler(bugSvc, planSvc).Register(app, auth)
	NewUploadHandler(testCaseSvc).Register(app, auth)
}
