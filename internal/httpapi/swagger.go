//go:build swagger

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

// MountSwagger serves the swagger UI at /swagger/ when built with
// -tags=swagger (docs generated via swag init).
func MountSwagger(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.Handler())
}
