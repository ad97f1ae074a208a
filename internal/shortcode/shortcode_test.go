package shortcode

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedSite() Site {
	return Site{
		Name: "Peptidology",
		URL:  "https://peptidology.example",
		Now:  func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func TestExpandDefaults(t *testing.T) {
	t.Parallel()

	r := Defaults(fixedSite())
	got := r.Expand(context.Background(), "© [year] [site_name]. All rights reserved. [SITE_URL]")
	require.Equal(t, "© 2026 Peptidology. All rights reserved. https://peptidology.example", got)
}

func TestExpandLeavesUnknownAndEscaped(t *testing.T) {
	t.Parallel()

	r := Defaults(fixedSite())
	ctx := context.Background()
	require.Equal(t, "[gallery ids=\"1,2\"] 2026", r.Expand(ctx, "[gallery ids=\"1,2\"] [year]"))
	require.Equal(t, "literal [year]", r.Expand(ctx, "literal [[year]]"))
	require.Equal(t, "no tags", r.Expand(ctx, "no tags"))
}

func TestExpandPassesAttributes(t *testing.T) {
	t.Parallel()

	r := New()
	r.Register("since", func(_ context.Context, attrs map[string]string) string {
		return attrs["from"] + "–2026"
	})
	require.True(t, r.Has("SINCE"))
	require.Equal(t, "2019–2026", r.Expand(context.Background(), `[since from="2019" /]`))
}

func TestNilRegistry(t *testing.T) {
	t.Parallel()

	var r *Registry
	require.Equal(t, "[year]", r.Expand(context.Background(), "[year]"))
}
