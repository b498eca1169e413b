package main

import (
	"context"
	"fmt"
	"os"

	"github.com/trezcool/college/apps/shared"
	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/user"
	logsvc "github.com/trezcool/college/services/logger"
	"github.com/trezcool/college/storage/database"
)

var logger core.Logger

func main() {
	conf := core.NewConfig()
	rollbarLogger := logsvc.NewRollbarLogger(os.Stdout, "ADMIN", conf)
	logger = rollbarLogger

	core.ParseEmailTemplates(conf, logger)
	user.LoadCommonPasswords(logger)

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)

	// set up services
	ctx := context.Background()
	cache, err := shared.NewCache(ctx, conf)
	errAndDie(err)
	media, err := shared.NewMediaStorage(ctx, conf)
	errAndDie(err)
	translator := core.NewTranslator()

	cli := commandLine{
		db:         db,
		translator: translator,
		svc: shared.NewServices(shared.ServicesDeps{
			Conf:     conf,
			Repos:    shared.SQLRepositories(db),
			Cache:    cache,
			Media:    media,
			Mail:     shared.NewEmailService(conf, logger),
			Validate: shared.NewValidator(translator),
			Logger:   logger,
		}),
	}

	// start CLI
	err = cli.run(os.Args)
	_ = db.Close()
	rollbarLogger.Close()
	if err != nil {
		if err != errHelp {
			fmt.Printf("\nerror: %s\n", cli.describe(err))
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err.Error(), err)
	}
}
