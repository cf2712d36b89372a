package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/relware/sitegen/internal/common"
	"github.com/spf13/afero"
)

type CounterService interface {
	Hit(ctx context.Context, path string)
	PageHits(ctx context.Context) (map[string]int64, error)
}

// NewSiteHandler serves the generated output tree. When a counter
// service is wired in, page views (requests that resolve to an
// index.html) are counted; asset requests are not.
func NewSiteHandler(fs afero.Fs, outDir string, srv CounterService, log *slog.Logger) http.Handler {
	log = log.With(slog.String("handler", "SiteHandler"))

	httpFs := afero.NewHttpFs(fs)
	fileServer := http.FileServer(httpFs.Dir(outDir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if srv != nil && isPagePath(r.URL.Path) {
			srv.Hit(r.Context(), r.URL.Path)
		}

		log.Debug("Serve", slog.String("path", r.URL.Path))
		fileServer.ServeHTTP(w, r)
	})
}

func isPagePath(path string) bool {
	if strings.HasSuffix(path, "/") {
		return true
	}

	last := path[strings.LastIndex(path, "/")+1:]

	return !strings.Contains(last, ".") || last == "index.html"
}

// NewStatHandler exposes the page-hit counters as JSON.
func NewStatHandler(srv CounterService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "StatHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := srv.PageHits(r.Context())
		if err != nil {
			switch {
			case errors.Is(err, common.ErrNoCountersFoundError):
				counters = map[string]int64{}
			default:
				log.Error("Cannot get counters", slog.Any("error", err))
				http.Error(w, "Cannot get counters", http.StatusInternalServerError)

				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(counters); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}
