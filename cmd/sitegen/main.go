package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/relware/sitegen/internal/app"
)

func main() {
	cfgFileName := flag.String("c", "config.yml", "Path to config file")
	serve := flag.Bool("serve", false, "Serve the generated site after building")
	flag.Parse()

	// A local .env may override catalog URL base, redis and the prod flag.
	godotenv.Load()

	app := app.New(*cfgFileName)
	app.Start(*serve)

	if !*serve {
		return
	}

	c := make(chan os.Signal, 1)
	defer close(c)
	done := make(chan struct{})

	signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1)
	go func() {
		defer close(done)

		for sig := range c {
			switch sig {
			case syscall.SIGUSR1:
				// Rebuild in place; the file server picks up the new tree.
				go func() {
					if err := app.Build(); err != nil {
						fmt.Printf("Rebuild failed: %s\n", err)
					}
				}()
			case syscall.SIGTERM, syscall.SIGINT:
				fmt.Println("Received termination signal. Shutting down...")
				done <- struct{}{}

				return
			}
		}
	}()

	<-done
	app.Stop()
	fmt.Println("done")
}
