package islet

const (
	contentSelector = ".content"
	pageStyleLinkID = "page-style"

	attrPageTitle  = "data-page-title"
	attrPageStyles = "data-page-styles"
)

// syncPageMeta applies the title and per-page stylesheet carried by a
// freshly inserted content container.
//
// The metadata holder is the container's content node. A missing holder or
// missing title attribute leaves the document title untouched. The
// stylesheet is resolved independently: no style reference removes a
// previously injected link, the same absolute URL is a no-op, a different
// URL mutates the existing link in place so the old sheet stays applied
// until the new one replaces it, and a first reference appends a link
// identified by pageStyleLinkID. At most one such link ever exists.
func syncPageMeta(doc *Document, container *Element) {
	content := container.QuerySelector(contentSelector)
	if content == nil && container.HasClass("content") {
		content = container
	}
	if content == nil {
		return
	}

	if title, ok := content.Attr(attrPageTitle); ok && title != "" {
		doc.SetTitle(title)
	}

	syncPageStyles(doc, content)
}

func syncPageStyles(doc *Document, content *Element) {
	head := doc.Head()
	if head == nil {
		return
	}
	link := head.QuerySelector("#" + pageStyleLinkID)

	ref, ok := content.Attr(attrPageStyles)
	if !ok || ref == "" {
		if link != nil {
			link.Remove()
		}
		return
	}

	href := absoluteHref(doc, ref)
	if link != nil {
		if cur, _ := link.Attr("href"); absoluteHref(doc, cur) == href {
			return
		}
		link.SetAttr("href", href)
		return
	}

	link = doc.CreateElement("link")
	link.SetAttr("rel", "stylesheet")
	link.SetAttr("id", pageStyleLinkID)
	link.SetAttr("href", href)
	head.AppendChild(link)
}

// absoluteHref resolves a style reference against the document location so
// relative and absolute references to the same sheet compare equal.
func absoluteHref(doc *Document, ref string) string {
	base := doc.URL()
	if base == nil {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}
