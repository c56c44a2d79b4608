package export

import (
	"fmt"
	"strings"
)

// HyperlinkFormula builds an Excel HYPERLINK formula showing display
// and pointing at link. An empty display yields no formula so empty
// cells stay empty.
func HyperlinkFormula(display any, link string) string {
	switch v := display.(type) {
	case nil:
		return ""
	case string:
		if v == "" {
			return ""
		}
		quoted := `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
		return fmt.Sprintf(`=HYPERLINK("%s", %s)`, link, quoted)
	case int, int64, float64:
		return fmt.Sprintf(`=HYPERLINK("%s", %v)`, link, v)
	default:
		return HyperlinkFormula(fmt.Sprint(v), link)
	}
}
