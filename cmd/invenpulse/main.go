package main

import (
	"context"
	"log/slog"
	"syscall"
	"time"

	evbus "github.com/vardius/message-bus"

	"github.com/tarunmanoharann/InvenPulse-sub000/internal"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/adapters"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/core"
	handlersV0 "github.com/tarunmanoharann/InvenPulse-sub000/internal/app/api/v0/handlers"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/audit"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/auth"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/app/users"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/config"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/domain"
	"github.com/tarunmanoharann/InvenPulse-sub000/internal/session"
)

func main() {
	ctx := internal.SignalAwareContext(context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	cfg, err := config.GetConfig()
	internal.AssertNoError(err)

	internal.SetupLogging(cfg.Advanced.LogLevel, cfg.Advanced.LogJson)

	cfg.LogStartupValues()

	slog.Info("starting InvenPulse session gateway", "version", internal.Version)

	rawDb, err := adapters.NewDatabase(cfg.Database)
	internal.AssertNoError(err)

	database, err := adapters.NewSqlRepository(rawDb)
	internal.AssertNoError(err)

	sessionStore := adapters.NewSessionStore(rawDb)
	sessionStore.StartCleanup(ctx, time.Hour)

	queueSize := 100
	eventBus := evbus.New(queueSize)

	_, err = audit.NewAuditRecorder(cfg, eventBus, database)
	internal.AssertNoError(err)

	var directory auth.UserDirectory
	var signupService handlersV0.SignupService
	var userService handlersV0.UserService
	var dashboardUserService handlersV0.DashboardUserService
	if cfg.Directory.Embedded {
		userManager, managerErr := users.NewUserManager(cfg, eventBus, database)
		internal.AssertNoError(managerErr)

		adminCtx := domain.SetUserInfo(ctx, domain.SystemAdminContextUserInfo())
		internal.AssertNoError(userManager.BootstrapDefaultAdmin(adminCtx))

		directory = userManager
		signupService = userManager
		userService = userManager
		dashboardUserService = userManager
	} else {
		directoryClient, clientErr := users.NewDirectoryClient(&cfg.Directory)
		internal.AssertNoError(clientErr)

		directory = directoryClient
	}

	authenticator, err := auth.NewAuthenticator(&cfg.Auth, cfg.Web.ExternalUrl, eventBus, directory)
	internal.AssertNoError(err)
	authenticator.StartBackgroundJobs(ctx)

	sessionManager := session.NewManager(cfg, sessionStore)

	if cfg.Statistics.Enabled {
		metricsServer, metricsErr := adapters.NewMetricsServer(cfg, rawDb, eventBus)
		internal.AssertNoError(metricsErr)

		go metricsServer.Run(ctx)
		metricsServer.StartBackgroundJobs(ctx)
	}

	validator := handlersV0.NewValidator()
	authHandler := handlersV0.NewAuthenticationHandler(sessionManager, cfg)

	apiHandlers := []handlersV0.Handler{
		handlersV0.NewConfigEndpoint(cfg),
		handlersV0.NewAuthEndpoint(cfg, sessionManager, validator, authenticator, signupService),
		handlersV0.NewDashboardEndpoint(authHandler, sessionManager, dashboardUserService),
		handlersV0.NewAuditEndpoint(authHandler, database),
	}
	if userService != nil {
		apiHandlers = append(apiHandlers, handlersV0.NewUserEndpoint(authHandler, userService))
	}

	apiFrontend := handlersV0.NewRestApi(sessionManager, apiHandlers...)

	webSrv, err := core.NewServer(cfg, apiFrontend)
	internal.AssertNoError(err)

	go webSrv.Run(ctx, cfg.Web.ListeningAddress)

	// wait until context gets cancelled
	<-ctx.Done()

	slog.Info("stopped InvenPulse session gateway")
}
