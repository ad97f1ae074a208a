package seo

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProductSchema(t *testing.T) {
	t.Parallel()

	m := Product("BPC-157", "", "https://peptidology.example/product/bpc-157/", "", Offer{Price: "39.00", Currency: "USD", Availability: "InStock"})
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(JSON(m)), &decoded))
	require.Equal(t, "Product", decoded["@type"])
	require.NotContains(t, decoded, "description")
	offers := decoded["offers"].(map[string]any)
	require.Equal(t, "https://schema.org/InStock", offers["availability"])

	require.NotContains(t, Product("x", "", "", "", Offer{}), "offers")
}

func TestJSONEscapesScriptBreakout(t *testing.T) {
	t.Parallel()

	out := string(JSON(Organization("</script><b>", "", "")))
	require.False(t, strings.Contains(out, "</script>"))
}

func TestWebSiteSearchAction(t *testing.T) {
	t.Parallel()

	m := WebSite("Peptidology", "https://peptidology.example/")
	action := m["potentialAction"].(map[string]any)
	require.Equal(t, "https://peptidology.example/?s={search_term_string}", action["target"])
	require.NotContains(t, WebSite("Peptidology", ""), "potentialAction")

	list := BreadcrumbList([]BreadcrumbItem{{Name: "Home", Item: "/"}, {Name: "Shop", Item: "/shop"}})
	items := list["itemListElement"].([]map[string]any)
	require.Equal(t, 2, items[1]["position"])
}
