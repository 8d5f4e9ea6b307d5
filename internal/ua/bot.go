package ua

import (
	"strings"

	"github.com/mssola/useragent"
)

// Substrings matched case-insensitively against the User-Agent. Covers
// unfurlers and HTTP client libraries that mssola's Bot() misses.
var botSignatures = []string{
	"bot",
	"spider",
	"crawl",

	// Link-preview / unfurler agents
	"facebookexternalhit",
	"whatsapp",
	"slackbot",
	"telegrambot",
	"twitterbot",
	"linkedinbot",
	"applebot",
	"preview",

	// HTTP client libraries
	"go-http-client/",
	"curl/",
	"wget/",
	"python-requests/",
	"python-urllib/",
	"okhttp/",
	"java/",
	"libwww-perl/",

	// Headless renderers
	"headlesschrome/",
	"phantomjs",
	"wkhtmltoimage",
	"wkhtmltopdf",
	"chrome-lighthouse",
}

// IsBot reports whether the user-agent looks like a bot, crawler or
// link-preview fetcher rather than a person.
func IsBot(rawUA string) bool {
	if useragent.New(rawUA).Bot() {
		return true
	}
	lower := strings.ToLower(rawUA)
	for _, sig := range botSignatures {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return false
}
