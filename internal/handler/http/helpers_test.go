package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
)

func serializableTxOpts() pgx.TxOptions {
	return pgx.TxOptions{IsoLevel: pgx.Serializable}
}

func chiRouteContext(r *http.Request, rctx *chi.Context) context.Context {
	return context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
}
