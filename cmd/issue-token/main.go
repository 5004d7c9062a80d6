package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go-pos-ledger/internal/config"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/pkg/jwt"
)

// Mints an operator token signed with the API's JWT_SECRET.
func main() {
	name := flag.String("name", "", "operator display name stamped on audit entries")
	role := flag.String("role", model.RoleCashier, "role code: ADMIN, MANAGER or CASHIER")
	id := flag.String("id", "", "operator id (random when empty)")
	flag.Parse()

	if *name == "" {
		fmt.Fprintln(os.Stderr, "usage: issue-token -name <operator> [-role CASHIER] [-id <id>]")
		os.Exit(2)
	}
	if _, ok := model.FindRole(*role); !ok {
		log.Fatalf("❌ Unknown role %q", *role)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Config: %v", err)
	}

	token, err := jwt.NewIssuer(cfg.JWTSecret, cfg.JWTTTL).GenerateToken(*id, *name, *role)
	if err != nil {
		log.Fatalf("❌ Failed to sign token: %v", err)
	}

	log.Printf("✅ Token for %s (%s), valid %s", *name, *role, cfg.JWTTTL)
	fmt.Println(token)
}
