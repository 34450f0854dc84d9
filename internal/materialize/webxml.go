package materialize

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cybersonic/lucli/internal/manifest"
)

const (
	cfmlServletName    = "CFMLServlet"
	cfmlServletClass   = "lucee.loader.servlet.CFMLServlet"
	restServletName    = "RestServlet"
	restServletClass   = "lucee.loader.servlet.RestServlet"
	rewriteFilterName  = "LucliRewriteFilter"
	rewriteFilterClass = "org.lucli.rewrite.RewriteFilter"
	protectConstraint  = "lucli-protected-files"
)

// ServletXML models a <servlet> declaration.
type ServletXML struct {
	Name  string `xml:"servlet-name"`
	Class string `xml:"servlet-class"`
}

// ServletMappingXML models a <servlet-mapping>.
type ServletMappingXML struct {
	Name    string   `xml:"servlet-name"`
	URLs    []string `xml:"url-pattern"`
}

// FilterXML models a <filter>.
type FilterXML struct {
	Name  string `xml:"filter-name"`
	Class string `xml:"filter-class"`
}

// FilterMappingXML models a <filter-mapping>.
type FilterMappingXML struct {
	Name string   `xml:"filter-name"`
	URLs []string `xml:"url-pattern"`
}

// WebXML models the subset of web.xml this package owns: CFML/REST
// servlet registration, the URL-rewrite filter hook, and the security
// constraint hiding the project manifest and .env from HTTP. Everything
// else (welcome-file-list, mime-mapping, and so on) round-trips through
// the Other catch-all.
type WebXML struct {
	XMLName              xml.Name            `xml:"web-app"`
	Attrs                []xml.Attr          `xml:",any,attr"`
	Filters              []FilterXML         `xml:"filter"`
	FilterMappings       []FilterMappingXML  `xml:"filter-mapping"`
	Servlets             []ServletXML        `xml:"servlet"`
	ServletMappings      []ServletMappingXML `xml:"servlet-mapping"`
	SecurityConstraints  []rawElement        `xml:"security-constraint"`
	Other                []rawElement        `xml:",any"`
}

// patchWebXML registers or removes the CFML/REST servlets, the
// URL-rewrite filter hook, and the manifest/.env security constraint,
// per §4.6 output 2.
func (mz *Materializer) patchWebXML(m *manifest.Manifest, in *Input) error {
	templatePath := filepath.Join(in.VendorRoot, "conf", "web.xml")
	//nolint:gosec // G304: vendorRoot is LuCLI's own downloaded/pointed-at runtime tree
	data, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("read web.xml template: %w", err)
	}

	var doc WebXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse web.xml: %w", err)
	}

	doc.Servlets = removeServlet(doc.Servlets, cfmlServletName)
	doc.Servlets = removeServlet(doc.Servlets, restServletName)
	doc.ServletMappings = removeServletMapping(doc.ServletMappings, cfmlServletName)
	doc.ServletMappings = removeServletMapping(doc.ServletMappings, restServletName)

	if m.EnableLucee {
		doc.Servlets = append(doc.Servlets, ServletXML{Name: cfmlServletName, Class: cfmlServletClass})
		doc.ServletMappings = append(doc.ServletMappings, ServletMappingXML{
			Name: cfmlServletName,
			URLs: []string{"*.cfm", "*.cfc", "*.cfml", "/index.cfm"},
		})
	}
	if m.EnableRest {
		doc.Servlets = append(doc.Servlets, ServletXML{Name: restServletName, Class: restServletClass})
		doc.ServletMappings = append(doc.ServletMappings, ServletMappingXML{
			Name: restServletName,
			URLs: []string{"/rest/*"},
		})
	}

	doc.Filters = removeFilter(doc.Filters, rewriteFilterName)
	doc.FilterMappings = removeFilterMapping(doc.FilterMappings, rewriteFilterName)
	if m.URLRewrite.Enabled {
		doc.Filters = append(doc.Filters, FilterXML{Name: rewriteFilterName, Class: rewriteFilterClass})
		doc.FilterMappings = append(doc.FilterMappings, FilterMappingXML{
			Name: rewriteFilterName,
			URLs: []string{"/*"},
		})
	}

	doc.SecurityConstraints = append(removeConstraint(doc.SecurityConstraints, protectConstraint),
		protectedFilesConstraint())

	out, err := xml.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("render web.xml: %w", err)
	}
	out = append([]byte(xml.Header), out...)

	return atomicWrite(filepath.Join(in.Instance.Dir, "conf", "web.xml"), out)
}

// protectedFilesConstraint denies HTTP access to the project manifest
// and .env file, unconditionally, regardless of other settings.
func protectedFilesConstraint() rawElement {
	inner := fmt.Sprintf(
		"<display-name>%s</display-name>"+
			"<web-resource-collection><web-resource-name>protected</web-resource-name>"+
			"<url-pattern>/lucee.json</url-pattern><url-pattern>/.env</url-pattern>"+
			"</web-resource-collection><auth-constraint/>",
		protectConstraint,
	)
	return rawElement{XMLName: xml.Name{Local: "security-constraint"}, Inner: inner}
}

func removeServlet(list []ServletXML, name string) []ServletXML {
	out := make([]ServletXML, 0, len(list))
	for _, s := range list {
		if s.Name != name {
			out = append(out, s)
		}
	}
	return out
}

func removeServletMapping(list []ServletMappingXML, name string) []ServletMappingXML {
	out := make([]ServletMappingXML, 0, len(list))
	for _, s := range list {
		if s.Name != name {
			out = append(out, s)
		}
	}
	return out
}

func removeFilter(list []FilterXML, name string) []FilterXML {
	out := make([]FilterXML, 0, len(list))
	for _, f := range list {
		if f.Name != name {
			out = append(out, f)
		}
	}
	return out
}

func removeFilterMapping(list []FilterMappingXML, name string) []FilterMappingXML {
	out := make([]FilterMappingXML, 0, len(list))
	for _, f := range list {
		if f.Name != name {
			out = append(out, f)
		}
	}
	return out
}

func removeConstraint(list []rawElement, displayName string) []rawElement {
	out := make([]rawElement, 0, len(list))
	for _, c := range list {
		if !containsDisplayName(c.Inner, displayName) {
			out = append(out, c)
		}
	}
	return out
}

func containsDisplayName(inner, name string) bool {
	return strings.Contains(inner, "<display-name>"+name+"</display-name>")
}
