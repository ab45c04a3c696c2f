package config

import (
	"fmt"
	"strings"
)

const (
	DefaultMaxWinners     = 11
	DefaultMaxPages       = 1
	DefaultRequestsPerSec = 1.0

	DefaultUsername    = "당첨자 탄생"
	DefaultContent     = "치킨 이벤트 당첨자가 나왔어요~"
	DefaultTitle       = "Title"
	DefaultURL         = "https://google.com/"
	DefaultDescription = "우리 모두 축하해줍시다!"

	DefaultFetchFailed  = "게시물이 삭제되었거나 불러오는 도중 문제가 발생하였습니다."
	DefaultNotifyFailed = "시스템 오류가 발생했습니다."
	DefaultDone         = "동작완료!"
)

// ApplyDefaults fills zero values in place.
func ApplyDefaults(cfg *Config) {
	if cfg.Raffle.MaxWinners <= 0 {
		cfg.Raffle.MaxWinners = DefaultMaxWinners
	}
	if cfg.Source.MaxPages <= 0 {
		cfg.Source.MaxPages = DefaultMaxPages
	}
	if cfg.Source.RequestsPerSec <= 0 {
		cfg.Source.RequestsPerSec = DefaultRequestsPerSec
	}
	if strings.TrimSpace(cfg.Source.URL) == "" && cfg.Source.Host != "" && cfg.Source.StatusID != "" {
		cfg.Source.URL = RebloggedByURL(cfg.Source.Host, cfg.Source.StatusID)
	}

	m := &cfg.Message
	setDefault(&m.Username, DefaultUsername)
	setDefault(&m.Content, DefaultContent)
	setDefault(&m.Title, DefaultTitle)
	setDefault(&m.URL, DefaultURL)
	setDefault(&m.Description, DefaultDescription)
	setDefault(&m.FetchFailed, DefaultFetchFailed)
	setDefault(&m.NotifyFailed, DefaultNotifyFailed)
	setDefault(&m.Done, DefaultDone)

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// RebloggedByURL builds the reblogged_by endpoint for a status.
func RebloggedByURL(host, statusID string) string {
	host = strings.TrimSuffix(strings.TrimSpace(host), "/")
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return fmt.Sprintf("%s/api/v1/statuses/%s/reblogged_by", host, strings.TrimSpace(statusID))
}

func setDefault(dst *string, def string) {
	if strings.TrimSpace(*dst) == "" {
		*dst = def
	}
}
