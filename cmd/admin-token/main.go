// Command admin-token mints development tokens against the server's
// signing key, so API endpoints can be exercised without running the
// login flow. Tokens can carry any role and permission group names;
// the server trusts the group claims the same way it trusts claims
// minted at login.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/forgo/inkwell/pkg/jwt"
)

type options struct {
	keyPath      string
	pubPath      string
	userID       string
	email        string
	username     string
	role         string
	groups       []string
	issuer       string
	expMins      int
	asJSON       bool
	generateKeys bool
}

func parseFlags() options {
	var opts options
	var groups string

	flag.StringVar(&opts.keyPath, "key", "./keys/private.pem", "path to the signing private key")
	flag.StringVar(&opts.pubPath, "pub", "./keys/public.pem", "path for the public key when generating")
	flag.StringVar(&opts.userID, "user", "user:dev", "user record ID to embed in the token")
	flag.StringVar(&opts.email, "email", "dev@inkwell.dev", "email claim")
	flag.StringVar(&opts.username, "username", "dev", "username claim")
	flag.StringVar(&opts.role, "role", "admin", "role claim: admin bypasses permission checks, user relies on groups")
	flag.StringVar(&groups, "groups", "", "comma-separated permission group names, e.g. Editors,Authors")
	flag.StringVar(&opts.issuer, "issuer", "inkwell.forgo.software", "token issuer, must match the server's JWT_ISSUER")
	flag.IntVar(&opts.expMins, "exp", 60*24*7, "token lifetime in minutes")
	flag.BoolVar(&opts.asJSON, "json", false, "emit the token envelope as JSON")
	flag.BoolVar(&opts.generateKeys, "generate-keys", false, "write a fresh RSA keypair to -key/-pub and exit")
	flag.Parse()

	for _, g := range strings.Split(groups, ",") {
		if g = strings.TrimSpace(g); g != "" {
			opts.groups = append(opts.groups, g)
		}
	}
	return opts
}

func main() {
	opts := parseFlags()

	if opts.generateKeys {
		if err := jwt.GenerateKeyPair(opts.keyPath, opts.pubPath); err != nil {
			fatalf("generating keypair: %v", err)
		}
		fmt.Printf("Keypair written: %s, %s\n", opts.keyPath, opts.pubPath)
		return
	}

	if opts.role != "admin" && opts.role != "user" {
		fatalf("unknown role %q: want admin or user", opts.role)
	}
	if opts.role == "user" && len(opts.groups) == 0 {
		fmt.Fprintln(os.Stderr, "warning: a user token with no groups can only reach public endpoints")
	}

	svc, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: opts.keyPath,
		Issuer:         opts.issuer,
		ExpirationMins: opts.expMins,
	})
	if err != nil {
		fatalf("loading signing key: %v\nGenerate one first: admin-token -generate-keys", err)
	}

	token, err := svc.Sign(jwt.Claims{
		Subject:  opts.userID,
		UserID:   opts.userID,
		Email:    opts.email,
		Username: opts.username,
		Role:     opts.role,
		Groups:   opts.groups,
	})
	if err != nil {
		fatalf("signing token: %v", err)
	}

	expires := time.Now().Add(time.Duration(opts.expMins) * time.Minute)
	if opts.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   opts.expMins * 60,
			"user_id":      opts.userID,
			"role":         opts.role,
			"groups":       opts.groups,
		})
		return
	}

	fmt.Printf("Minted %s token for %s", opts.role, opts.userID)
	if len(opts.groups) > 0 {
		fmt.Printf(" (groups: %s)", strings.Join(opts.groups, ", "))
	}
	fmt.Printf(", expires %s\n\n", expires.Format(time.RFC3339))
	fmt.Println(token)
	fmt.Println()
	fmt.Printf("  curl -H 'Authorization: Bearer <token>' http://localhost:8080/v1/posts\n")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
