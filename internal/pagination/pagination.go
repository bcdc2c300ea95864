package pagination

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Options is a normalised limit/offset window plus ordering.
type Options struct {
	Limit   int
	Offset  int
	OrderBy string
	Desc    bool
}

// Normalize applies the default and max limit and clamps a negative offset.
func Normalize(limit, offset int) Options {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Options{Limit: limit, Offset: offset}
}

// Meta describes one page of a list result.
type Meta struct {
	CurrentPage int   `json:"current_page"` // from 1
	PerPage     int   `json:"per_page"`
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
}

// NewMeta derives page metadata from a total and the window that produced it.
func NewMeta(total int64, opts Options) Meta {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Meta{
		CurrentPage: opts.Offset/limit + 1,
		PerPage:     limit,
		TotalItems:  total,
		TotalPages:  pages,
	}
}

// Page is a list result with its metadata.
type Page[T any] struct {
	Items []T
	Meta  Meta
}

func NewPage[T any](items []T, total int64, opts Options) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Meta: NewMeta(total, opts)}
}
