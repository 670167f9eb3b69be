package islet

import (
	"context"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document wraps a parsed HTML tree together with its location.
//
// A Document is the headless analog of a browser window: it owns the DOM,
// the current URL, and the click handlers attached to elements. It is not
// safe for concurrent mutation; like the event loop it stands in for,
// callers drive it from one goroutine at a time.
type Document struct {
	root     *html.Node // DocumentNode
	url      *url.URL
	handlers map[*html.Node]func(context.Context) error
}

// ParseDocument parses a full HTML document located at the given URL.
func ParseDocument(r io.Reader, location *url.URL) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return &Document{
		root:     root,
		url:      location,
		handlers: make(map[*html.Node]func(context.Context) error),
	}, nil
}

// URL returns the document's current location.
func (d *Document) URL() *url.URL {
	return d.url
}

// SetURL updates the document's location. The navigation controller calls
// this after a successful swap; embedders rarely need it.
func (d *Document) SetURL(u *url.URL) {
	d.url = u
}

// Root returns the root <html> element.
func (d *Document) Root() *Element {
	if el := findByAtom(d.root, atom.Html); el != nil {
		return &Element{node: el, doc: d}
	}
	return &Element{node: d.root, doc: d}
}

// Head returns the <head> element, or nil if the document has none.
func (d *Document) Head() *Element {
	if n := findByAtom(d.root, atom.Head); n != nil {
		return &Element{node: n, doc: d}
	}
	return nil
}

// Body returns the <body> element, or nil if the document has none.
func (d *Document) Body() *Element {
	if n := findByAtom(d.root, atom.Body); n != nil {
		return &Element{node: n, doc: d}
	}
	return nil
}

// Title returns the text of the <title> element, or "".
func (d *Document) Title() string {
	if n := findByAtom(d.root, atom.Title); n != nil {
		return (&Element{node: n, doc: d}).Text()
	}
	return ""
}

// SetTitle sets the document title, creating the <title> element if the
// head lacks one.
func (d *Document) SetTitle(title string) {
	n := findByAtom(d.root, atom.Title)
	if n == nil {
		head := d.Head()
		if head == nil {
			return
		}
		t := d.CreateElement("title")
		head.AppendChild(t)
		n = t.node
	}
	(&Element{node: n, doc: d}).SetText(title)
}

// CreateElement creates a detached element owned by this document.
func (d *Document) CreateElement(tag string) *Element {
	tag = strings.ToLower(tag)
	return &Element{
		node: &html.Node{
			Type:     html.ElementNode,
			Data:     tag,
			DataAtom: atom.Lookup([]byte(tag)),
		},
		doc: d,
	}
}

// QuerySelector returns the first element in the document matching the
// selector, or nil.
func (d *Document) QuerySelector(sel string) *Element {
	return query(d, d.root, sel)
}

// QuerySelectorAll returns every element in the document matching the
// selector, in document order.
func (d *Document) QuerySelectorAll(sel string) []*Element {
	return queryAll(d, d.root, sel)
}

// HTML renders the document back to markup.
func (d *Document) HTML() (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, d.root); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// adopt replaces this document's tree with another's, preserving the
// Document identity held by the controller and any embedder.
func (d *Document) adopt(other *Document) {
	d.root = other.root
	d.url = other.url
	d.handlers = other.handlers
}

// dropHandlers removes click handlers registered on n or any descendant.
// Called whenever a subtree is detached so the handler table cannot
// outlive the elements it refers to.
func (d *Document) dropHandlers(n *html.Node) {
	if len(d.handlers) == 0 {
		return
	}
	for c := n; c != nil; {
		delete(d.handlers, c)
		c = nextNode(c, n)
	}
}

// Element is a handle to a single element node within a Document.
//
// Handles are cheap values; two handles to the same underlying node are
// interchangeable. The hydrator's side tables key on the node, not the
// handle, so holding a handle never pins an identity of its own.
type Element struct {
	node *html.Node
	doc  *Document
}

// Tag returns the lower-cased tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the value of the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttr sets the named attribute, replacing any existing value.
func (e *Element) SetAttr(name, val string) {
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr[i].Val = val
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: val})
}

// RemoveAttr removes the named attribute if present.
func (e *Element) RemoveAttr(name string) {
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr = append(e.node.Attr[:i], e.node.Attr[i+1:]...)
			return
		}
	}
}

// ID returns the element's id attribute, or "".
func (e *Element) ID() string {
	v, _ := e.Attr("id")
	return v
}

// HasClass reports whether the element's class list contains name.
func (e *Element) HasClass(name string) bool {
	v, _ := e.Attr("class")
	for _, c := range strings.Fields(v) {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass appends name to the element's class list if absent.
func (e *Element) AddClass(name string) {
	if e.HasClass(name) {
		return
	}
	v, _ := e.Attr("class")
	if v == "" {
		e.SetAttr("class", name)
		return
	}
	e.SetAttr("class", v+" "+name)
}

// RemoveClass removes name from the element's class list.
func (e *Element) RemoveClass(name string) {
	v, ok := e.Attr("class")
	if !ok {
		return
	}
	fields := strings.Fields(v)
	kept := fields[:0]
	for _, c := range fields {
		if c != name {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(kept, " "))
}

// Matches reports whether the element matches a single compound selector
// (tag, .class, #id, [attr] parts; no combinators).
func (e *Element) Matches(sel string) bool {
	chain := parseSelector(sel)
	if len(chain) != 1 {
		return false
	}
	return matchesSimple(e.node, chain[0])
}

// QuerySelector returns the first descendant matching the selector, or nil.
func (e *Element) QuerySelector(sel string) *Element {
	return query(e.doc, e.node, sel)
}

// QuerySelectorAll returns every descendant matching the selector, in
// document order.
func (e *Element) QuerySelectorAll(sel string) []*Element {
	return queryAll(e.doc, e.node, sel)
}

// Text returns the concatenated text content of the subtree.
func (e *Element) Text() string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return sb.String()
}

// SetText replaces the element's children with a single text node.
func (e *Element) SetText(text string) {
	e.removeChildren()
	e.node.AppendChild(&html.Node{Type: html.TextNode, Data: text})
}

// InnerHTML renders the element's children to markup.
func (e *Element) InnerHTML() (string, error) {
	var sb strings.Builder
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// SetHTML parses the given fragment and replaces the element's children
// with it. Handlers registered inside the discarded subtree are dropped.
func (e *Element) SetHTML(fragment string) error {
	ctxNode := &html.Node{
		Type:     html.ElementNode,
		Data:     e.node.Data,
		DataAtom: e.node.DataAtom,
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctxNode)
	if err != nil {
		return err
	}
	e.removeChildren()
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

// AppendChild appends a child element.
func (e *Element) AppendChild(child *Element) {
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
}

// Remove detaches the element from its parent.
func (e *Element) Remove() {
	if e.node.Parent == nil {
		return
	}
	e.doc.dropHandlers(e.node)
	e.node.Parent.RemoveChild(e.node)
}

// Parent returns the parent element, or nil.
func (e *Element) Parent() *Element {
	p := e.node.Parent
	for p != nil && p.Type != html.ElementNode {
		p = p.Parent
	}
	if p == nil {
		return nil
	}
	return &Element{node: p, doc: e.doc}
}

// Connected reports whether the element is still attached to its document.
func (e *Element) Connected() bool {
	for n := e.node; n != nil; n = n.Parent {
		if n == e.doc.root {
			return true
		}
	}
	return false
}

// OnClick registers the element's click handler, replacing any previous
// one.
func (e *Element) OnClick(fn func(context.Context) error) {
	e.doc.handlers[e.node] = fn
}

// Click invokes the element's click handler, if any.
func (e *Element) Click(ctx context.Context) error {
	if fn, ok := e.doc.handlers[e.node]; ok {
		return fn(ctx)
	}
	return nil
}

func (e *Element) removeChildren() {
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.doc.dropHandlers(c)
		e.node.RemoveChild(c)
		c = next
	}
}

// findByAtom returns the first node with the given atom, depth-first.
func findByAtom(root *html.Node, a atom.Atom) *html.Node {
	for n := root; n != nil; n = nextNode(n, root) {
		if n.Type == html.ElementNode && n.DataAtom == a {
			return n
		}
	}
	return nil
}

// nextNode advances a depth-first traversal rooted at stop.
func nextNode(n, stop *html.Node) *html.Node {
	if n.FirstChild != nil {
		return n.FirstChild
	}
	for n != nil && n != stop {
		if n.NextSibling != nil {
			return n.NextSibling
		}
		n = n.Parent
	}
	return nil
}

// simpleSel is one compound part of a selector: tag#id.class[attr=val].
type simpleSel struct {
	tag     string
	id      string
	classes []string
	attrs   []attrSel
}

type attrSel struct {
	key    string
	val    string
	hasVal bool
}

// parseSelector parses the selector subset the page contract needs: tags,
// classes, ids, attribute presence/equality, and the descendant
// combinator.
func parseSelector(sel string) []simpleSel {
	parts := strings.Fields(sel)
	chain := make([]simpleSel, 0, len(parts))
	for _, p := range parts {
		chain = append(chain, parseSimple(p))
	}
	return chain
}

func parseSimple(s string) simpleSel {
	var sel simpleSel
	i := 0
	name := func() string {
		start := i
		for i < len(s) && s[i] != '.' && s[i] != '#' && s[i] != '[' {
			i++
		}
		return s[start:i]
	}
	if i < len(s) && s[i] != '.' && s[i] != '#' && s[i] != '[' {
		sel.tag = strings.ToLower(name())
	}
	for i < len(s) {
		switch s[i] {
		case '.':
			i++
			sel.classes = append(sel.classes, name())
		case '#':
			i++
			sel.id = name()
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return sel
			}
			body := s[i+1 : i+end]
			i += end + 1
			if k, v, found := strings.Cut(body, "="); found {
				v = strings.Trim(v, `"'`)
				sel.attrs = append(sel.attrs, attrSel{key: k, val: v, hasVal: true})
			} else {
				sel.attrs = append(sel.attrs, attrSel{key: body})
			}
		default:
			i++
		}
	}
	return sel
}

func matchesSimple(n *html.Node, sel simpleSel) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if sel.tag != "" && n.Data != sel.tag {
		return false
	}
	attr := func(key string) (string, bool) {
		for _, a := range n.Attr {
			if a.Key == key {
				return a.Val, true
			}
		}
		return "", false
	}
	if sel.id != "" {
		if id, ok := attr("id"); !ok || id != sel.id {
			return false
		}
	}
	if len(sel.classes) > 0 {
		classes, _ := attr("class")
		fields := strings.Fields(classes)
		have := make(map[string]bool, len(fields))
		for _, c := range fields {
			have[c] = true
		}
		for _, want := range sel.classes {
			if !have[want] {
				return false
			}
		}
	}
	for _, as := range sel.attrs {
		v, ok := attr(as.key)
		if !ok {
			return false
		}
		if as.hasVal && v != as.val {
			return false
		}
	}
	return true
}

// matchesChain matches the last selector part against n and the earlier
// parts against its ancestors, in order (descendant combinator).
func matchesChain(n, scope *html.Node, chain []simpleSel) bool {
	if !matchesSimple(n, chain[len(chain)-1]) {
		return false
	}
	anc := n.Parent
	for i := len(chain) - 2; i >= 0; i-- {
		for {
			if anc == nil || anc == scope {
				return false
			}
			if matchesSimple(anc, chain[i]) {
				anc = anc.Parent
				break
			}
			anc = anc.Parent
		}
	}
	return true
}

func query(doc *Document, scope *html.Node, sel string) *Element {
	chain := parseSelector(sel)
	if len(chain) == 0 {
		return nil
	}
	for n := nextNode(scope, scope); n != nil; n = nextNode(n, scope) {
		if matchesChain(n, scope, chain) {
			return &Element{node: n, doc: doc}
		}
	}
	return nil
}

func queryAll(doc *Document, scope *html.Node, sel string) []*Element {
	chain := parseSelector(sel)
	if len(chain) == 0 {
		return nil
	}
	var out []*Element
	for n := nextNode(scope, scope); n != nil; n = nextNode(n, scope) {
		if matchesChain(n, scope, chain) {
			out = append(out, &Element{node: n, doc: doc})
		}
	}
	return out
}
