package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	echoapi "github.com/bigplans/backend/apps/api/echo"
	"github.com/bigplans/backend/core"
	"github.com/bigplans/backend/core/comment"
	"github.com/bigplans/backend/core/group"
	"github.com/bigplans/backend/core/kiss"
	"github.com/bigplans/backend/core/task"
	"github.com/bigplans/backend/core/user"
	emailsvc "github.com/bigplans/backend/services/email"
	locksvc "github.com/bigplans/backend/services/lock"
	logsvc "github.com/bigplans/backend/services/logger"
	"github.com/bigplans/backend/storage/database"
	"github.com/bigplans/backend/storage/database/gormrepos"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	zlog, err := logsvc.NewZap(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up zap: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = zlog.Sync() }()

	logger := logsvc.NewRollbarLogger(zlog.Named("api"), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	ctx := context.Background()

	// set up DB
	gdb, err := setUpDB(ctx, conf, zlog.Named("db"))
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		logger.Fatal(fmt.Sprintf("getting sql.DB: %v", err), err)
	}
	defer func() {
		if err = sqlDB.Close(); err != nil {
			logger.Error("Failed to close database", err)
		}
	}()

	// set up redis (optional)
	var locker core.Locker
	rdb, err := locksvc.NewRedisClient(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up redis: %v", err), err)
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
		locker = locksvc.NewRedisLocker(rdb, conf, logger)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}

	usrSvc := user.NewService(gormrepos.NewUserRepository(gdb))
	taskSvc := task.NewService(gormrepos.NewTaskRepository(gdb), logger, conf, locker)
	groupSvc := group.NewService(gormrepos.NewGroupRepository(gdb), mailSvc, conf)
	kissSvc := kiss.NewService(gormrepos.NewKissRepository(gdb), taskSvc, groupSvc, kiss.NewPolicy(conf))
	commentSvc := comment.NewService(gormrepos.NewCommentRepository(gdb), usrSvc, taskSvc, groupSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	task.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(
		&echoapi.Options{
			Conf:           conf,
			Logger:         logger,
			Validate:       validate,
			Translator:     translator,
			SignalShutdown: func() { shutdown <- syscall.SIGTERM },
		},
		&echoapi.Deps{
			DB:         sqlDB,
			UserSvc:    usrSvc,
			TaskSvc:    taskSvc,
			KissSvc:    kissSvc,
			GroupSvc:   groupSvc,
			CommentSvc: commentSvc,
		},
	)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("API listening on %s", conf.Server.Address))
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(fmt.Sprintf("server error: %v", err), err)
		}

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpDB(ctx context.Context, conf *core.Config, zlog *zap.Logger) (*gorm.DB, error) {
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return database.NewGorm(db, conf, zlog)
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
