package public

import "github.com/Fuse-Health-Org/fuse-monorepo-sub008/internal/provider"

// Handler is the checkout-facing API entry point.
type Handler struct {
	*provider.Container
}

// New builds the public handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
