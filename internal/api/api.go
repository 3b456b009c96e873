// Package api maps each upstream storefront endpoint to one typed method.
// Upstream failures come back as *httpclient.APIError carrying a
// human-readable message; arguments rejected before any call come back as
// *errors.AppError.
package api

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/No25ha/Market/pkg/httpclient"
	"github.com/No25ha/Market/pkg/pagination"
)

// Doer executes one upstream request. *httpclient.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req *httpclient.Request) (*httpclient.Response, error)
}

// family groups endpoints that share one API version.
type family string

const (
	familyAuth          family = "auth"
	familyUsers         family = "users"
	familyProducts      family = "products"
	familyCategories    family = "categories"
	familySubcategories family = "subcategories"
	familyBrands        family = "brands"
	familyCart          family = "cart"
	familyWishlist      family = "wishlist"
	familyAddresses     family = "addresses"
	familyOrders        family = "orders"
)

// versions is the single source of truth for which API version each
// resource family is served from.
var versions = map[family]string{
	familyAuth:          "/api/v1",
	familyUsers:         "/api/v1",
	familyProducts:      "/api/v1",
	familyCategories:    "/api/v1",
	familySubcategories: "/api/v1",
	familyBrands:        "/api/v1",
	familyCart:          "/api/v2",
	familyWishlist:      "/api/v1",
	familyAddresses:     "/api/v1",
	familyOrders:        "/api/v1",
}

// path joins the family's versioned root with the given segments. Segments
// are path-escaped.
func path(f family, segments ...string) string {
	var b strings.Builder
	b.WriteString(versions[f])
	b.WriteString("/")
	b.WriteString(string(f))
	for _, s := range segments {
		b.WriteString("/")
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// route is path with placeholders, used as the metrics label.
func route(f family, segments ...string) string {
	var b strings.Builder
	b.WriteString(versions[f])
	b.WriteString("/")
	b.WriteString(string(f))
	for _, s := range segments {
		b.WriteString("/")
		b.WriteString(s)
	}
	return b.String()
}

// call executes req and decodes the body into out (when non-nil). Failures
// are described with fallback as the operation's default message.
func call(ctx context.Context, doer Doer, logger *slog.Logger, req *httpclient.Request, fallback string, out any) error {
	resp, err := doer.Do(ctx, req)
	if err != nil {
		err = httpclient.Describe(err, fallback)
		logger.DebugContext(ctx, "upstream call failed",
			slog.String("route", req.Route),
			slog.Int("status", httpclient.StatusOf(err)),
			slog.String("error", err.Error()),
		)
		return err
	}
	if out == nil {
		return nil
	}
	if err := resp.Decode(out); err != nil {
		return httpclient.Describe(err, fallback)
	}
	return nil
}

// listEnvelope is the upstream shape for collection reads.
type listEnvelope[T any] struct {
	Results  int                 `json:"results"`
	Metadata pagination.Metadata `json:"metadata"`
	Data     []T                 `json:"data"`
}

// itemEnvelope is the upstream shape for single-entity reads and writes.
type itemEnvelope[T any] struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// nonNil returns items, or an empty slice when items is nil.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
