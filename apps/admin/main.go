package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/bigplans/backend/core"
	"github.com/bigplans/backend/core/task"
	"github.com/bigplans/backend/core/user"
	logsvc "github.com/bigplans/backend/services/logger"
	"github.com/bigplans/backend/storage/database"
	"github.com/bigplans/backend/storage/database/gormrepos"
)

func main() {
	conf := core.NewConfig()

	zlog, err := logsvc.NewZap(conf)
	if err != nil {
		fmt.Fprintf(os.Stderr, "setting up zap: %v\n", err)
		os.Exit(1)
	}
	logger := logsvc.NewRollbarLogger(zlog.Named("admin"), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	// set up DB
	ctx := context.Background()
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	if err = db.PingContext(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
	}
	gdb, err := database.NewGorm(db, conf, zlog.Named("db"))
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up gorm: %v", err), err)
	}

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	task.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:       db,
		usrSvc:   user.NewService(gormrepos.NewUserRepository(gdb)),
		taskSvc:  task.NewService(gormrepos.NewTaskRepository(gdb), logger, conf, nil),
		validate: validate,
		out:      os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	_ = zlog.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", describeError(err, translator))
		os.Exit(1)
	}
}
