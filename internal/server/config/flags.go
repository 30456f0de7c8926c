package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/userdir/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   REST bind address (e.g., ":3002")
//	-d string   PostgreSQL DSN
//	-s string   secret for password hashing and token signing
//	-t int      access token validity, minutes
//	-m string   password scheme ("sha256" or "pbkdf2")
//	-e string   environment ("development" or "production")
//	-l int      login attempts per minute per client, 0 disables
//
// Only these flags are taken from os.Args (see flagx.FilterArgs), so the
// -c/-config flag handled by parseJson does not collide with them.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-m", "-e", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.PasswordScheme, "m", config.PasswordScheme, "password hashing scheme")
	fs.StringVar(&config.Environment, "e", config.Environment, "environment")
	fs.IntVar(&config.LoginRateLimit, "l", config.LoginRateLimit, "login attempts per minute per client")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		}
	})
}
