// Command studioctl manages admins and seed content outside the web server.
//
//	studioctl seed-admin --email info@ijwihub.com --password '...'
//	studioctl list-admins
//	studioctl seed-content
//	studioctl hash-password '...'
//
// It reads the same config file, .env and environment as the server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
