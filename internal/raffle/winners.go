package raffle

import (
	"strings"

	"reblograffle/internal/mastodon"
)

// Winner is one embed field of the announcement.
type Winner struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// WinnerFrom maps an account to its announcement field.
func WinnerFrom(a mastodon.Account) Winner {
	return Winner{Name: a.DisplayName, Value: "@" + a.Acct, Inline: false}
}

func WinnersFrom(accounts []mastodon.Account) []Winner {
	out := make([]Winner, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, WinnerFrom(a))
	}
	return out
}

// Dedupe keeps the first entry of every acct.
func Dedupe(accounts []mastodon.Account) []mastodon.Account {
	seen := make(map[string]struct{}, len(accounts))
	out := make([]mastodon.Account, 0, len(accounts))
	for _, a := range accounts {
		k := normalizeAcct(a.Acct)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}

// Exclude drops accounts whose acct appears in deny. Matching ignores case and a leading "@".
func Exclude(accounts []mastodon.Account, deny []string) []mastodon.Account {
	if len(deny) == 0 {
		return accounts
	}
	set := make(map[string]struct{}, len(deny))
	for _, d := range deny {
		if k := normalizeAcct(d); k != "" {
			set[k] = struct{}{}
		}
	}
	out := make([]mastodon.Account, 0, len(accounts))
	for _, a := range accounts {
		if _, ok := set[normalizeAcct(a.Acct)]; ok {
			continue
		}
		out = append(out, a)
	}
	return out
}

func normalizeAcct(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "@"))
}
