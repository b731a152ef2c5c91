package style

import (
	"golang.org/x/net/html"
)

// initialValues holds the user-agent initial value of properties a
// computed style always reports.
var initialValues = map[string]Property{
	"position":                   "static",
	"float":                      "none",
	"visibility":                 "visible",
	"color":                      "canvastext",
	"background-color":           "transparent",
	"direction":                  "ltr",
	"white-space":                "normal",
	"width":                      "auto",
	"height":                     "auto",
	"min-width":                  "auto",
	"min-height":                 "auto",
	"max-width":                  "none",
	"max-height":                 "none",
	"top":                        "auto",
	"right":                      "auto",
	"bottom":                     "auto",
	"left":                       "auto",
	"margin-top":                 "0",
	"margin-right":               "0",
	"margin-bottom":              "0",
	"margin-left":                "0",
	"padding-top":                "0",
	"padding-right":              "0",
	"padding-bottom":             "0",
	"padding-left":               "0",
	"border-top-width":           "medium",
	"border-right-width":         "medium",
	"border-bottom-width":        "medium",
	"border-left-width":          "medium",
	"border-top-style":           "none",
	"border-right-style":         "none",
	"border-bottom-style":        "none",
	"border-left-style":          "none",
	"border-top-color":           "currentcolor",
	"border-right-color":         "currentcolor",
	"border-bottom-color":        "currentcolor",
	"border-left-color":          "currentcolor",
	"border-top-left-radius":     "0",
	"border-top-right-radius":    "0",
	"border-bottom-right-radius": "0",
	"border-bottom-left-radius":  "0",
}

// Initial returns the user-agent default of a property for a node, or
// NullStyle if no default is known.
func Initial(node *html.Node, key string) Property {
	if key == "display" {
		return Display(node)
	}
	return initialValues[key]
}

// Display returns the default `display` property for an HTML node.
func Display(node *html.Node) Property {
	if node == nil {
		return "none"
	}
	if node.Type == html.DocumentNode {
		return "block"
	}
	if node.Type != html.ElementNode {
		tracer().Debugf("cannot get display-property for non-element")
		return "none"
	}
	switch node.Data {
	case "head", "script", "style", "link", "meta", "title", "template":
		return "none"
	case "html", "address", "article", "aside", "body", "blockquote", "div",
		"dl", "fieldset", "figure", "footer", "form", "h1", "h2", "h3", "h4",
		"h5", "h6", "header", "hr", "main", "nav", "ol", "p", "pre", "section",
		"ul":
		return "block"
	case "li":
		return "list-item"
	case "table":
		return "table"
	case "tr":
		return "table-row"
	case "td", "th":
		return "table-cell"
	}
	return "inline"
}
