package registry

import (
	"net"
	"net/http"
	"time"
)

type HTTPConfig struct {
	Timeout        time.Duration
	DialTimeout    time.Duration
	TLSHandshake   time.Duration
	ResponseHeader time.Duration
}

func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:        60 * time.Second,
		DialTimeout:    10 * time.Second,
		TLSHandshake:   10 * time.Second,
		ResponseHeader: 30 * time.Second,
	}
}

func NewHTTPClient(cfg HTTPConfig) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.DialTimeout,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   cfg.TLSHandshake,
			ResponseHeaderTimeout: cfg.ResponseHeader,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}
