// Package proxy forwards /analysis/* to the externally run analysis
// service, rewriting the prefix to /api/*. Bodies stream through
// unconsumed, so the proxy routes must never sit behind body-reading
// middleware.
package proxy

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
)

const Prefix = "/analysis"

type TokenSource interface {
	Mint() (string, error)
}

type Proxy struct {
	rp     *httputil.ReverseProxy
	tokens TokenSource
}

func New(upstream string, tokens TokenSource, log *slog.Logger) (*Proxy, error) {
	target, err := url.Parse(upstream)

	if err != nil {
		return nil, err
	}

	rp := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.URL.Path = rewritePath(pr.In.URL.Path)
			pr.Out.Host = target.Host
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			// connect failures become a fixed-shape envelope instead of
			// leaking the transport error to the browser
			log.Error("analysis upstream unreachable", "path", r.URL.Path, "err", err)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)

			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":  "analysis_unavailable",
				"detail": "The analysis service could not be reached.",
			})
		},
	}

	return &Proxy{rp: rp, tokens: tokens}, nil
}

// rewritePath maps /analysis/foo to /api/foo.
func rewritePath(in string) string {
	rest := strings.TrimPrefix(in, Prefix)

	if rest == "" {
		rest = "/"
	}

	return "/api" + rest
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if p.tokens != nil {
		if token, err := p.tokens.Mint(); err == nil {
			r.Header.Set("Authorization", "Bearer "+token)
		}
	}

	p.rp.ServeHTTP(w, r)
}
