package main

import (
	"context"
	"os"
	"time"

	"risehub/config"
	"risehub/db"
	"risehub/logger"
	"risehub/services"
)

func main() {
	config.LoadConfig()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	err := db.InitDB(ctx, config.AppConfig.DBConnString())
	cancel()
	if err != nil {
		logger.Fatal("Error initializing database: %v", err)
	}
	defer db.DB.Close()

	cli := commandLine{
		accounts: services.NewAccountService(db.NewPostgresStore(db.DB), services.SystemClock),
		out:      os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("%v", err)
		}
		db.DB.Close()
		os.Exit(1)
	}
}
