// token emite un JWT firmado con JWT_SECRET para operar la API (entornos internos y pruebas).
//
// Uso: go run ./cmd/token -user bodeguero-1 -role bodeguero [-exp 480]
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aguahielo/movimientos-api/pkg/config"
	"github.com/aguahielo/movimientos-api/pkg/jwt"
)

var roles = map[string]bool{"admin": true, "bodeguero": true, "vendedor": true}

func main() {
	user := flag.String("user", "", "identificador del usuario (created_by)")
	role := flag.String("role", "vendedor", "admin | bodeguero | vendedor")
	exp := flag.Int("exp", 0, "minutos de validez; 0 = JWT_EXPIRATION_MINUTES")
	flag.Parse()

	if *user == "" || !roles[*role] {
		flag.Usage()
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	minutes := cfg.JWT.Expiration
	if *exp > 0 {
		minutes = *exp
	}
	signer, err := jwt.NewSigner(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(minutes)*time.Minute)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	tok, err := signer.Sign(jwt.Identity{UserID: *user, Role: *role})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
