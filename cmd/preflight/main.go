// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strings"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	token := strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN"))
	webhooks := strings.TrimSpace(os.Getenv("WEBHOOK_URLS"))
	sheetsApps := strings.TrimSpace(os.Getenv("SHEETS_APPS_ID"))
	sheetsToken := strings.TrimSpace(os.Getenv("SHEETS_TOKEN"))
	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	redis := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	apiAddr := strings.TrimSpace(os.Getenv("ADDR"))
	keys := strings.TrimSpace(os.Getenv("API_KEYS"))

	if token == "" && webhooks == "" {
		fail("neither TELEGRAM_TOKEN nor WEBHOOK_URLS set — changes would be detected but never announced.")
	}
	if token != "" && !strings.Contains(token, ":") {
		warn("TELEGRAM_TOKEN does not look like a bot token (expected <id>:<secret>).")
	}
	if webhooks != "" && strings.Contains(webhooks, " ") {
		warn("WEBHOOK_URLS contains spaces; use comma-separated with no spaces, e.g. url1,url2")
	}

	if sheetsApps != "" && sheetsToken == "" {
		fail("SHEETS_APPS_ID set but SHEETS_TOKEN empty — sheet reads will 401.")
	}
	if sheetsApps == "" && db == "" {
		warn("neither SHEETS_APPS_ID nor DATABASE_URL set — tracked apps come from the in-memory store only.")
	} else if sheetsApps != "" {
		ok("apps backend: sheets (" + sheetsApps + ")")
	} else {
		ok("apps backend: postgres")
	}

	if redis == "" {
		warn("REDIS_ADDR empty — notification ledger resets on restart (duplicate announcements possible).")
	} else {
		ok("REDIS_ADDR=" + redis)
	}

	if apiAddr == "" {
		warn("ADDR is empty; default in your app may be used.")
	} else {
		ok("ADDR=" + apiAddr)
	}

	if keys == "" {
		warn("API_KEYS empty — the HTTP API accepts unauthenticated requests.")
	} else {
		ok("API_KEYS present")
	}

	ok("preflight passed")
}
