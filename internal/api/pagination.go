package api

import (
	"net/http"
	"strconv"

	"github.com/oapi-codegen/runtime"
)

const totalCountHeader = "X-Total-Count"

// parsePagination normalizes limit/offset query params.
// limit=50, offset=0. limit capped at 100, minimum 1.
// offset min 0
func parsePagination(limit, offset *int) (int64, int64) {
	l := int64(50)
	o := int64(0)
	if limit != nil {
		l = int64(*limit)
	}
	if offset != nil {
		o = int64(*offset)
	}
	if l > 100 {
		l = 100
	}
	if l < 1 {
		l = 1
	}
	if o < 0 {
		o = 0
	}
	return l, o
}

// bindPagination reads ?limit= and ?offset=. On failure the 400 response has
// already been written.
func bindPagination(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	var limit, offset *int
	query := r.URL.Query()
	if err := runtime.BindQueryParameter("form", true, false, "limit", query, &limit); err != nil {
		ValidationErr("Invalid limit.", []ErrorDetail{{Field: "limit", Message: err.Error()}}).Write(w, http.StatusBadRequest)
		return 0, 0, false
	}
	if err := runtime.BindQueryParameter("form", true, false, "offset", query, &offset); err != nil {
		ValidationErr("Invalid offset.", []ErrorDetail{{Field: "offset", Message: err.Error()}}).Write(w, http.StatusBadRequest)
		return 0, 0, false
	}
	l, o := parsePagination(limit, offset)
	return l, o, true
}

// paginate returns one page of items and sets the total count header.
func paginate[T any](w http.ResponseWriter, items []T, limit, offset int64) []T {
	w.Header().Set(totalCountHeader, strconv.Itoa(len(items)))
	total := int64(len(items))
	if offset >= total {
		return []T{}
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return items[offset:end]
}
