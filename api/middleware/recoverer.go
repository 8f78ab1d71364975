package middleware

import (
	"fmt"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// Recoverer answers a panicking handler with the standard internal error
// envelope. http.ErrAbortHandler is re-raised so net/http drops the
// connection without logging.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				responses.WriteError(r.Context(), logg, w, panicError(rec))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func panicError(rec any) error {
	err, ok := rec.(error)
	if !ok {
		err = fmt.Errorf("%v", rec)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic recovered")
}
