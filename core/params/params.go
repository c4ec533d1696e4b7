package params

import (
	"date-booker/core/constants"
	"strconv"

	"github.com/labstack/echo/v4"
)

type QueryParams struct {
	PageNumber int
	PageSize   int
	Search     string
}

func NewQueryParams(c echo.Context) *QueryParams {
	return &QueryParams{
		PageNumber: toPositiveInt(c.QueryParam("page_number"), constants.DefaultPageNumber),
		PageSize:   clamp(toPositiveInt(c.QueryParam("page_size"), constants.DefaultPageSize), constants.MaxPageSize),
		Search:     c.QueryParam("search"),
	}
}

func (p QueryParams) Offset() int {
	return (p.PageNumber - 1) * p.PageSize
}

func toPositiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func clamp(n, max int) int {
	if n > max {
		return max
	}
	return n
}
