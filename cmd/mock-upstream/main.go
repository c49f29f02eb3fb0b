package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/shpitdev/vc-enricher/internal/mockupstream"
)

const defaultPage = `Acme Labs builds hosted CI for machine learning teams.
Pricing: self-serve plans from $49/month. We're hiring platform engineers.`

func main() {
	addr := defaultString("MOCK_UPSTREAM_ADDR", ":8090")
	pageFile := defaultString("MOCK_UPSTREAM_PAGE_FILE", "")
	token := defaultString("MOCK_UPSTREAM_TOKEN", "")

	fs := flag.NewFlagSet("mock-upstream", flag.ExitOnError)
	fs.StringVar(&addr, "addr", addr, "Listen address")
	fs.StringVar(&pageFile, "page-file", pageFile, "File whose text the reader returns for every URL (default: built-in sample page)")
	fs.StringVar(&token, "token", token, "Require this bearer token on completion requests (empty disables)")
	_ = fs.Parse(os.Args[1:])

	page := defaultPage
	if pageFile != "" {
		b, err := os.ReadFile(pageFile)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "read page file: %v\n", err)
			os.Exit(2)
		}
		page = string(b)
	}

	srv := mockupstream.New()
	srv.SetDefaultPage(page)
	srv.RequireBearerToken(token)
	srv.ReplyWith(mockupstream.CannedReply)

	_, _ = fmt.Fprintf(os.Stdout, "mock-upstream listening on %s (reader: GET /<url>, completions: POST /v1/chat/completions)\n", addr)
	hs := &http.Server{Addr: addr, Handler: srv.Handler(), ReadHeaderTimeout: 10 * time.Second}
	if err := hs.ListenAndServe(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func defaultString(envVar string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(envVar))
	if v == "" {
		return fallback
	}
	return v
}
