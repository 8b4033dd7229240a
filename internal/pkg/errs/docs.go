// Package errs provides the typed validation and lookup errors shared by the
// order coordination core and its adapters.
//
// Each error type pairs a sentinel (ErrValueIsRequired, ErrValueIsInvalid,
// ErrValueIsOutOfRange, ErrObjectNotFound, ErrVersionIsInvalid) with a struct
// carrying the offending parameter. Unwrap returns the sentinel, so callers
// classify with errors.Is and inspect details with errors.As:
//
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    return ctx.JSON(http.StatusNotFound, ...)
//	}
package errs
