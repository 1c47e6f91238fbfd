package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/eslsoft/vocengage/internal/repository"
)

const (
	_maxPageSize     = 1000
	_defaultPageSize = 20
	_maxBodyBytes    = 1 << 20
)

func convertPagination(r *http.Request) (repository.Pagination, error) {
	q := r.URL.Query()
	pageNo, err := queryInt(q.Get("page_no"), 1)
	if err != nil {
		return repository.Pagination{}, fmt.Errorf("page_no: %w", err)
	}
	pageSize, err := queryInt(q.Get("page_size"), _defaultPageSize)
	if err != nil {
		return repository.Pagination{}, fmt.Errorf("page_size: %w", err)
	}
	if pageNo <= 0 {
		pageNo = 1
	}
	if pageSize <= 0 {
		pageSize = _defaultPageSize
	}
	if pageSize > _maxPageSize {
		pageSize = _maxPageSize
	}
	return repository.Pagination{PageNo: int32(pageNo), PageSize: int32(pageSize)}, nil
}

func convertFilterOrder(r *http.Request) repository.FilterOrder {
	q := r.URL.Query()
	return repository.FilterOrder{Filter: q.Get("filter"), OrderBy: q.Get("order_by")}
}

func queryInt(raw string, fallback int) (int, error) {
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("must be an integer")
	}
	return v, nil
}

// decodeJSON reads a single JSON object; an empty body leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, _maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

type pageResponse[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	PageNo   int32 `json:"page_no"`
	PageSize int32 `json:"page_size"`
}
