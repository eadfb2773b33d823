// Package inspect exposes a read-only HTTP view of a container's bindings,
// aliases and resolution state.
package inspect

import (
	"net/http"

	"github.com/km-arc/go-laravel-container/framework/container"
	gohttp "github.com/km-arc/go-laravel-container/framework/http"
	"github.com/km-arc/go-laravel-container/framework/routing"
)

// Summary is the body of the index endpoint.
type Summary struct {
	ID       string                  `json:"id"`
	Bindings []container.Description `json:"bindings"`
	Aliases  map[string]string       `json:"aliases"`
}

// Handler serves container state.
type Handler struct {
	c *container.Container
}

// New returns a Handler for c.
func New(c *container.Container) *Handler {
	return &Handler{c: c}
}

// Mount registers the inspector routes under prefix:
//
//	GET {prefix}/             summary
//	GET {prefix}/bindings     every bound abstract
//	GET {prefix}/bindings/*   one abstract (keys may contain slashes)
//	GET {prefix}/aliases      alias → target map
func (h *Handler) Mount(r *routing.Router, prefix string) {
	r.Prefix(prefix, func(r *routing.Router) {
		r.Get("/", h.index)
		r.Get("/bindings", h.bindings)
		r.Get("/bindings/*", h.binding)
		r.Get("/aliases", h.aliases)
	})
}

func (h *Handler) index(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success(Summary{
		ID:       h.c.ID(),
		Bindings: h.c.Snapshot(),
		Aliases:  h.c.Aliases(),
	})
}

func (h *Handler) bindings(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success(h.c.Snapshot())
}

func (h *Handler) binding(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	abstract := routing.Param(r, "*")
	d, ok := h.c.Describe(abstract)
	if !ok {
		res.NotFound("no binding registered for [" + abstract + "]")
		return
	}
	res.Success(d)
}

func (h *Handler) aliases(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success(h.c.Aliases())
}
