package main

import (
	"context"
	"log"

	"github.com/cotsubo/camsync/internal/client"
	"github.com/cotsubo/camsync/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := client.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
