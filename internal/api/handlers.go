package api

import (
	"net/http"
	"strconv"

	"github.com/mimmersdev/pases-universitarios/internal/store"
)

// getListParams extracts the paging, sorting and filter query params of the
// pass listing. Repeated filter params are combined with AND.
func getListParams(r *http.Request) (store.PassQuery, error) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	perPage, _ := strconv.Atoi(q.Get("per_page"))

	filters, err := store.ParsePassFilters(q["filter"])
	if err != nil {
		return store.PassQuery{}, err
	}
	if search := q.Get("search"); search != "" {
		filters = append(filters, store.SearchFilter{Term: search})
	}

	return store.PassQuery{
		Filters: filters,
		Page:    page,
		PerPage: perPage,
		SortBy:  q.Get("sort_by"),
		SortDir: q.Get("sort_dir"),
	}, nil
}
