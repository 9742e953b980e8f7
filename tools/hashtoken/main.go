// Command hashtoken prints the admin_token_hash value for a bearer token.
package main

import (
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
)

func hashToken(token string) string {
	h := sha256.New()
	h.Write([]byte(token))
	return hex.EncodeToString(h.Sum(nil))
}

func main() {
	generate := flag.Bool("new", false, "generate a random token")
	flag.Parse()

	token := flag.Arg(0)
	if *generate {
		token = uuid.NewString()
		fmt.Println("Token:", token)
	}
	if token == "" {
		fmt.Fprintln(os.Stderr, "usage: hashtoken [-new] <token>")
		os.Exit(2)
	}
	fmt.Println("Hash:", hashToken(token))
}
