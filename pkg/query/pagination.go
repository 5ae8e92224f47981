package query

// Pagination is the metadata block attached to every list response.
type Pagination struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalItems  int64 `json:"totalItems"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

func NewPagination(page, limit int, totalItems int64) Pagination {
	if limit < 1 {
		limit = 1
	}
	totalPages := int((totalItems + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:        page,
		Limit:       limit,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}
