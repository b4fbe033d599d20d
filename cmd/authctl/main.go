package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/dmitrijs2005/authkeeper/internal/authctl"
)

func main() {

	addr := flag.String("addr", "http://localhost:8080", "base URL of the account service")
	flag.Parse()

	ctx := context.Background()
	app := authctl.NewApp(*addr, os.Stdin, os.Stdout)

	if err := app.Run(ctx, flag.Args()); err != nil {
		log.Fatalf("%v", err)
	}
}
