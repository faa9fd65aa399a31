// Package htmlreport rewrites rendered scan reports so they can be served
// from hosts whose content-security policy forbids inline styles.
package htmlreport

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MonitorBannerID marks the injected "view online" banner
const MonitorBannerID = "scangate-monitor-banner"

const monitorLinkText = "View full results online"

// PostProcessor rewrites rendered reports for the scan pipeline
type PostProcessor struct{}

// PostProcess delegates to the package-level PostProcess
func (PostProcessor) PostProcess(rawHTML []byte, stylesheetURL, monitorURL string) ([]byte, error) {
	return PostProcess(rawHTML, stylesheetURL, monitorURL)
}

// PostProcess removes inline <style> elements from <head>, links the external
// stylesheet instead and, when monitorURL is set, prepends a centered link to
// it at the top of <body>. Applying it to its own output changes nothing.
func PostProcess(rawHTML []byte, stylesheetURL, monitorURL string) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse report HTML: %w", err)
	}

	head := findElement(doc, atom.Head)
	body := findElement(doc, atom.Body)
	if head == nil || body == nil {
		return nil, fmt.Errorf("report HTML has no head or body")
	}

	removeElements(head, atom.Style)
	if stylesheetURL != "" && !hasStylesheet(head, stylesheetURL) {
		head.AppendChild(stylesheetLink(stylesheetURL))
	}

	if url := strings.TrimSpace(monitorURL); url != "" {
		setMonitorBanner(body, url)
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("failed to render report HTML: %w", err)
	}
	return buf.Bytes(), nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// removeElements drops every descendant element of type a
func removeElements(n *html.Node, a atom.Atom) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && c.DataAtom == a {
			n.RemoveChild(c)
			continue
		}
		removeElements(c, a)
	}
}

func hasStylesheet(head *html.Node, href string) bool {
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Link &&
			attr(c, "rel") == "stylesheet" && attr(c, "href") == href {
			return true
		}
	}
	return false
}

func stylesheetLink(href string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Link,
		Data:     "link",
		Attr: []html.Attribute{
			{Key: "rel", Val: "stylesheet"},
			{Key: "href", Val: href},
		},
	}
}

func setMonitorBanner(body *html.Node, url string) {
	if banner := findByID(body, MonitorBannerID); banner != nil {
		if a := findElement(banner, atom.A); a != nil {
			setAttr(a, "href", url)
			return
		}
		banner.Parent.RemoveChild(banner)
	}

	link := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.A,
		Data:     "a",
		Attr: []html.Attribute{
			{Key: "target", Val: "_blank"},
			{Key: "rel", Val: "noopener noreferrer"},
			{Key: "href", Val: url},
		},
	}
	link.AppendChild(&html.Node{Type: html.TextNode, Data: monitorLinkText})

	banner := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Center,
		Data:     "center",
		Attr:     []html.Attribute{{Key: "id", Val: MonitorBannerID}},
	}
	banner.AppendChild(link)

	body.InsertBefore(banner, body.FirstChild)
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
