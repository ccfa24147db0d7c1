package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bitnetd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ModelStatus() types.ModelStatusResponse
	Progress() types.DownloadProgress
	Download(ctx context.Context, modelName string) types.Result
	DownloadBackground(modelName string) types.Result
	Generate(ctx context.Context, req types.GenerateRequest) types.Result
	Upload(filename string, r io.Reader) types.Result
	ListModels() ([]types.Model, error)
}

// NewMux builds the router. Domain failures travel inside the tagged Result
// payload with a 200 status; only malformed requests get a 4xx.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(requestLogger)
	r.Use(MetricsMiddleware)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(indexHTML)
	})

	r.Post("/download-model", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		name := strings.TrimSpace(r.PostFormValue("model_name"))
		if name == "" {
			writeJSONError(w, http.StatusBadRequest, "model_name is required")
			return
		}
		var res types.Result
		if formBool(r, "background", true) {
			res = svc.DownloadBackground(name)
		} else {
			res = svc.Download(r.Context(), name)
		}
		writeJSON(w, res)
	})

	r.Get("/download-progress", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.Progress())
	})

	r.Post("/upload-model", func(w http.ResponseWriter, r *http.Request) {
		if maxUploadBytes > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "file field is required")
			return
		}
		defer f.Close()
		writeJSON(w, svc.Upload(hdr.Filename, f))
	})

	r.Post("/generate", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid form body")
			return
		}
		prompt := r.PostFormValue("prompt")
		if strings.TrimSpace(prompt) == "" {
			writeJSONError(w, http.StatusBadRequest, "prompt is required")
			return
		}
		req := types.GenerateRequest{
			Prompt:       prompt,
			Conversation: formBool(r, "conversation", true),
			NPredict:     formInt(r, "n_predict", 128),
			Temperature:  formFloat(r, "temperature", 0.7),
		}
		writeJSON(w, svc.Generate(r.Context(), req))
	})

	r.Get("/model-status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, svc.ModelStatus())
	})

	r.Get("/models", func(w http.ResponseWriter, r *http.Request) {
		models, err := svc.ListModels()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, types.ModelsResponse{Models: models})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

// writeJSON writes a JSON body with a 200 status.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
	}
}
