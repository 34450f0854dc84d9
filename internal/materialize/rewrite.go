package materialize

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/cybersonic/lucli/internal/manifest"
)

// staticExtensions are never routed through the router file.
var staticExtensions = []string{
	"css", "js", "mjs", "map", "png", "jpg", "jpeg", "gif", "svg", "ico",
	"webp", "woff", "woff2", "ttf", "eot", "pdf", "zip", "txt", "json",
}

// staticPrefixes are directory prefixes served directly, never rewritten.
var staticPrefixes = []string{"/assets", "/static", "/modules", "/builtin"}

const rewriteRulesTemplate = `# generated by LuCLI ConfigMaterializer — do not edit by hand
RewriteEngine On

# static assets and known prefixes pass through untouched
{{- range .StaticPrefixes}}
RewriteCond %{REQUEST_URI} ^{{.}}/ [OR]
{{- end}}
RewriteCond %{REQUEST_URI} \.({{.StaticExtPattern}})$ [NC,OR]
RewriteCond %{REQUEST_URI} ^{{.AdminPath}} [OR]
RewriteCond %{REQUEST_URI} ^/rest/ [OR]
RewriteCond %{REQUEST_URI} \.(cfm|cfc|cfml)$ [NC]
RewriteRule ^ - [L]

# everything else forwards internally to the router, preserving PATH_INFO
RewriteRule ^/(.*)$ /{{.RouterFile}}/$1 [PT,L,QSA]
`

// rewriteTemplateData supplies text/template with the values §4.6
// output 3 requires: static exclusions, the admin path, and the
// router target.
type rewriteTemplateData struct {
	StaticPrefixes   []string
	StaticExtPattern string
	AdminPath        string
	RouterFile       string
}

// synthesizeRewriteRules renders the rewrite configuration described in
// §4.6 output 3 when urlRewrite.enabled, or removes any previously
// generated file otherwise.
func (mz *Materializer) synthesizeRewriteRules(m *manifest.Manifest, in *Input) error {
	dst := filepath.Join(in.Instance.Dir, "conf", "rewrite.conf")

	if !m.URLRewrite.Enabled {
		return removeIfExists(dst)
	}

	router := m.URLRewrite.RouterFile
	if router == "" {
		router = "index.cfm"
	}

	tmpl, err := template.New("rewrite").Parse(rewriteRulesTemplate)
	if err != nil {
		return fmt.Errorf("parse rewrite template: %w", err)
	}

	data := rewriteTemplateData{
		StaticPrefixes:   staticPrefixes,
		StaticExtPattern: joinPattern(staticExtensions),
		AdminPath:        "/lucee/admin",
		RouterFile:       router,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render rewrite rules: %w", err)
	}

	return atomicWrite(dst, buf.Bytes())
}

func joinPattern(exts []string) string {
	out := exts[0]
	for _, e := range exts[1:] {
		out += "|" + e
	}
	return out
}
