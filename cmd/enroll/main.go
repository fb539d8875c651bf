// Enroll registers and enrolls identities with the organization CA and
// stores the resulting credentials in the file wallet. Run it once with
// -admin to bootstrap the admin identity, then without flags to enroll the
// application user.
package main

import (
	"context"
	"flag"
	"log"

	"charitychain/config"
	"charitychain/enroll"
	"charitychain/wallet"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (optional, env vars override)")
	label := flag.String("label", "", "identity label to enroll (defaults to the configured user label)")
	admin := flag.Bool("admin", false, "enroll the admin identity instead of a user")
	secret := flag.String("secret", "adminpw", "admin enrollment secret (admin only)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %s", err)
	}

	store, err := wallet.NewFileStore(cfg.WalletPath)
	if err != nil {
		log.Fatalf("failed to open wallet at %s: %s", cfg.WalletPath, err)
	}

	ca, closeCA, err := enroll.NewCAClient(cfg)
	if err != nil {
		log.Fatalf("failed to connect to the CA: %s", err)
	}
	defer closeCA()

	service := enroll.New(ca, store, cfg.MSPID, cfg.CAAffiliation, cfg.AdminLabel)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.SubmitTimeout)
	defer cancel()

	if *admin {
		created, err := service.EnrollAdmin(ctx, *secret)
		if err != nil {
			log.Fatalf("admin enrollment failed: %s", err)
		}
		if !created {
			log.Printf("admin identity '%s' already enrolled", cfg.AdminLabel)
			return
		}
		log.Printf("enrolled admin identity '%s'", cfg.AdminLabel)
		return
	}

	target := *label
	if target == "" {
		target = cfg.UserLabel
	}
	created, err := service.Enroll(ctx, target)
	if err != nil {
		log.Fatalf("enrollment of '%s' failed: %s", target, err)
	}
	if !created {
		log.Printf("identity '%s' already enrolled", target)
		return
	}
	log.Printf("enrolled identity '%s'", target)
}
