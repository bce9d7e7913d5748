package orgcontext

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	obscontext "github.com/smallbiznis/storeledger/internal/observability/context"
)

// ErrMissingOrganization is returned when a request carries no tenant.
var ErrMissingOrganization = errors.New("missing_organization")

type orgContextKey struct{}

// WithOrgID stores the tenant in ctx and tags it for log correlation.
func WithOrgID(ctx context.Context, orgID snowflake.ID) context.Context {
	ctx = context.WithValue(ctx, orgContextKey{}, orgID)
	return obscontext.WithOrgID(ctx, orgID.Int64())
}

// OrgIDFromContext returns the tenant from ctx, if set.
func OrgIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(orgContextKey{}).(snowflake.ID)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}

// Parse reads a tenant id from a header value.
func Parse(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, ErrMissingOrganization
	}
	return id, nil
}
