package envsubst

import "regexp"

// Token grammar, adapted from the `{{ name }}` regex-driven substitution
// shape in giantswarm-muster's internal/template.Engine to LuCLI's three
// placeholder forms.
var (
	// #env:NAME# or #env:NAME:-default#
	envTokenRe = regexp.MustCompile(`#env:([A-Za-z_][A-Za-z0-9_]*)(?::-([^#]*))?#`)

	// ${secret:NAME}
	secretTokenRe = regexp.MustCompile(`\$\{secret:([A-Za-z0-9_.\-]+)\}`)

	// Legacy ${NAME} or ${NAME:-default}; never matches the secret form,
	// since NAME here excludes ':'.
	legacyTokenRe = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)
)
