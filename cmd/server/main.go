// Server exposes the campaign contract over HTTP. Identities must already
// be enrolled into the wallet (see cmd/enroll) before the server can submit
// transactions.
package main

import (
	"flag"
	"log"

	"charitychain/api"
	"charitychain/config"
	"charitychain/wallet"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (optional, env vars override)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %s", err)
	}

	store, err := wallet.NewFileStore(cfg.WalletPath)
	if err != nil {
		log.Fatalf("failed to open wallet at %s: %s", cfg.WalletPath, err)
	}
	if !store.Exists(cfg.UserLabel) {
		log.Printf("warning: identity '%s' is not enrolled yet, requests will fail until it is", cfg.UserLabel)
	}

	router := api.NewRouter(api.NewService(cfg, store))
	log.Printf("serving campaign API on %s (channel %s, chaincode %s)", cfg.ListenAddress, cfg.Channel, cfg.Chaincode)
	if err := router.Run(cfg.ListenAddress); err != nil {
		log.Fatalf("server stopped: %s", err)
	}
}
