package backup

import (
	"regexp"
	"strings"
)

// EncodeContentLinks replaces links to the activity index and view pages with
// the $@PAYPALINDEX*N@$ and $@PAYPALVIEWBYID*N@$ placeholders.
func EncodeContentLinks(content, wwwRoot string) string {
	wwwRoot = strings.TrimRight(wwwRoot, "/")
	if content == "" || wwwRoot == "" {
		return content
	}
	base := regexp.QuoteMeta(wwwRoot)

	index := regexp.MustCompile(base + `/mod/paypal/index\.php\?id=([0-9]+)`)
	content = index.ReplaceAllString(content, `$$@PAYPALINDEX*${1}@$$`)

	view := regexp.MustCompile(base + `/mod/paypal/view\.php\?id=([0-9]+)`)
	return view.ReplaceAllString(content, `$$@PAYPALVIEWBYID*${1}@$$`)
}
