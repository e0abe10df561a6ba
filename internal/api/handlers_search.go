package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/search"
)

// Search runs spec.md §4.7's faceted search
// (GET /api/search?q=...&types=person,rotation&facet.<name>=v1,v2&page=1&page_size=20).
func (h *Handlers) Search(c echo.Context) error {
	query := c.QueryParam("q")

	var entityTypes []search.EntityType
	if raw := c.QueryParam("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			entityTypes = append(entityTypes, search.EntityType(strings.TrimSpace(t)))
		}
	}

	var selections []search.FacetSelection
	for name, values := range c.QueryParams() {
		const prefix = "facet."
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		facetName := strings.TrimPrefix(name, prefix)
		var vals []string
		for _, v := range values {
			vals = append(vals, strings.Split(v, ",")...)
		}
		selections = append(selections, search.FacetSelection{
			FacetName: facetName,
			Values:    vals,
			Operator:  search.OperatorOR,
		})
	}

	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	pageSize := 20
	if raw := c.QueryParam("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			pageSize = n
		}
	}

	result, err := h.deps.Search.Search(c.Request().Context(), query, entityTypes, selections, search.DefaultFacetConfig(), page, pageSize)
	if err != nil {
		return internalError(c, err)
	}
	return ok(c, http.StatusOK, result)
}
