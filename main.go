package main

import (
	"github.com/campus-agora/market-svc/config"
	"github.com/campus-agora/market-svc/internal/api"
)

func main() {
	cfg := config.LoadConfig()
	api.StartServer(cfg)
}
