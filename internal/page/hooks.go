package page

import (
	"peptidology.com/storefront/internal/catalog"
	"peptidology.com/storefront/internal/hooks"
)

// Hooks are the extension points a request passes through before rendering.
type Hooks struct {
	// TemplateInclude maps the hierarchy template name to the one that will be rendered.
	TemplateInclude hooks.Filter[string, Context]
	// BodyClass adjusts the classes on <body> once the template is known.
	BodyClass hooks.Filter[[]string, Resolved]
	// PreGetPosts may mutate the main catalog query before it runs.
	PreGetPosts hooks.Action[MainQuery]
}

// Resolved pairs a request with the template chosen for it.
type Resolved struct {
	Context  Context
	Template string
}

// MainQuery is the argument of PreGetPosts.
type MainQuery struct {
	Context Context
	Query   *catalog.Query
}
