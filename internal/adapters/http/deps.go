package http

import (
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/routeslope/internal/adapters/valkey"
	"github.com/samirrijal/routeslope/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// NATS and Cache are optional.
type Dependencies struct {
	Slope          *usecases.SlopeService
	NATS           *nats.Conn
	Cache          *valkey.Cache
	RequestTimeout time.Duration
	OpenAPIPath    string // defaults to api/openapi.yaml
}
