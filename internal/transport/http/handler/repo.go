// Package handler groups the gateway's HTTP handlers.
package handler

import (
	"github.com/mandalnilabja/chatrelay/internal/transport/http/handler/admin"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/handler/infra"
	"github.com/mandalnilabja/chatrelay/internal/transport/http/handler/proxy"
)

// Repo holds the handler groups.
type Repo struct {
	Proxy *proxy.Handlers
	Infra *infra.Handlers
	Admin *admin.Handlers
}

// NewRepo creates a new instance of the handler repository
func NewRepo(p *proxy.Handlers, i *infra.Handlers, a *admin.Handlers) *Repo {
	return &Repo{Proxy: p, Infra: i, Admin: a}
}
