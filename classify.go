package islet

import (
	"net/url"
	"path"
	"strings"
)

// assetExtensions is the denylist of destinations that are served as raw
// assets (documents, archives, images) rather than pages. Clicks on these
// keep native browser behavior.
var assetExtensions = map[string]struct{}{
	".pdf": {}, ".doc": {}, ".docx": {}, ".xls": {}, ".xlsx": {},
	".ppt": {}, ".pptx": {}, ".txt": {},
	".zip": {}, ".tar": {}, ".gz": {}, ".tgz": {}, ".rar": {}, ".7z": {},
	".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".webp": {},
	".svg": {}, ".ico": {}, ".avif": {},
}

// Interceptable reports whether a clicked anchor should be taken over by
// partial navigation. All rules must pass: the anchor resolves against the
// document origin, stays on that origin, does not target another browsing
// context, is not a download, and does not point at a raw asset.
//
// Pure predicate; modifier keys and mouse buttons are the controller's
// concern (see ClickOptions).
func Interceptable(a *Element, origin *url.URL) bool {
	href, ok := a.Attr("href")
	if !ok || href == "" || origin == nil {
		return false
	}
	dest, err := origin.Parse(href)
	if err != nil {
		return false
	}
	if dest.Scheme != origin.Scheme || dest.Host != origin.Host {
		return false
	}
	if target, ok := a.Attr("target"); ok && target != "" && target != "_self" {
		return false
	}
	if a.HasAttr("download") {
		return false
	}
	ext := strings.ToLower(path.Ext(dest.Path))
	if _, denied := assetExtensions[ext]; denied {
		return false
	}
	return true
}
