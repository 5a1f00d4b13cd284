package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/eventsync/internal/cli"
	"github.com/dmitrijs2005/eventsync/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Fatalf("%v", err)
	}

	err = app.Run(ctx, cli.PositionalArgs(os.Args[1:]))
	if cerr := app.Close(); cerr != nil {
		log.Printf("close: %v", cerr)
	}
	if err != nil {
		log.Fatalf("%v", err)
	}

}
