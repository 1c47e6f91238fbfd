package repository

import "context"

// Pagination holds pagination parameters for listing entities.
type Pagination struct {
	PageNo   int32
	PageSize int32
}

func (p *Pagination) Offset() int32 {
	if p.PageNo <= 1 {
		return 0
	}
	return (p.PageNo - 1) * p.PageSize
}

type FilterOrder struct {
	Filter  string
	OrderBy string
}

func (fo *FilterOrder) GetFilter() string { return fo.Filter }

func (fo *FilterOrder) GetOrderBy() string { return fo.OrderBy }

// Transactor runs fn inside a single storage transaction. Repositories called with the ctx passed
// to fn take part in that transaction; an error returned by fn rolls every write back.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
