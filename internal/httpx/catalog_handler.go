package httpx

import (
	"net/http"
	"time"

	"github.com/ariefcatur/go-wedding-orders/internal/orders"
	"github.com/ariefcatur/go-wedding-orders/internal/pricing"
)

func formatCatalog(c *orders.Catalog) {
	if c.FormattedPrice == "" {
		c.FormattedPrice = pricing.FormatRange(c.PriceRange[0].Int64(), c.PriceRange[1].Int64())
	}
}

func (h *Handlers) listCatalogs(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	page, err := h.Backend.Catalogs(ctx, listQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	for i := range page.Data {
		formatCatalog(&page.Data[i])
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *Handlers) getCatalog(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	c, err := h.Backend.Catalog(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	formatCatalog(&c)
	writeJSON(w, http.StatusOK, c)
}

func (h *Handlers) customFeatures(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	fs, err := h.Backend.CustomFeatures(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	for i := range fs {
		if fs[i].FormattedPrice == "" {
			fs[i].FormattedPrice = pricing.Format(fs[i].Price.Int64())
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"features": fs})
}

func (h *Handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, 5*time.Second)
	defer cancel()

	page, err := h.Backend.Users(ctx, listQuery(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}
