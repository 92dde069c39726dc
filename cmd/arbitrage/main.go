package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"meme-arbitrage/arbitrage/app"
	"meme-arbitrage/config"

	"github.com/joho/godotenv"
)

func main() {
	//
	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGABRT)
	go shutdown(cancel, quit)
	//
	if len(os.Args) != 2 {
		panic("args is invalid")
	}
	configFile := os.Args[1]
	//
	godotenv.Load()
	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("config is invalid: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(config.LogPath, 0755); err != nil {
		panic(err)
	}
	at := app.NewApp(ctx, cfg)
	at.Service()
}

func shutdown(cancel context.CancelFunc, quit <-chan os.Signal) {
	osCall := <-quit
	fmt.Printf("System call: %v, scanner is shutting down......\n", osCall)
	cancel()
}
