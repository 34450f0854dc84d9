package manifest

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/cybersonic/lucli/internal/luerr"
)

// fieldValidate runs the struct-tag rules declared on Manifest (required
// fields, port ranges, runtime.type enum).
var fieldValidate = validator.New(validator.WithRequiredStructEnabled())

// Validate rejects a Manifest failing its struct-tag rules, a port
// collision, or a rewrite configuration incompatible with the chosen
// runtime (§4.1 "Validation"). Struct-tag violations are reported with
// the offending JSON field name as the key path so remedies stay
// actionable from the CLI.
func Validate(m *Manifest) error {
	if err := fieldValidate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok && len(verrs) > 0 {
			fe := verrs[0]
			return luerr.New(luerr.ManifestInvalid,
				luerr.WithKeyPath(jsonFieldName(fe.StructField())),
				luerr.WithRemedy(fmt.Sprintf("failed %q validation", fe.Tag())),
				luerr.WithCause(err))
		}
		return luerr.New(luerr.ManifestInvalid, luerr.WithCause(err))
	}

	if err := validatePorts(m); err != nil {
		return err
	}

	if m.URLRewrite.Enabled && m.Runtime.Type == "container" && m.URLRewrite.RouterFile == "" {
		return luerr.New(luerr.ManifestInvalid,
			luerr.WithKeyPath("urlRewrite.routerFile"),
			luerr.WithRemedy("set urlRewrite.routerFile when urlRewrite.enabled is true"))
	}

	return nil
}

func asValidationErrors(err error, out *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*out = verrs
	}
	return ok
}

// jsonFieldName maps a Go struct field name to its lucee.json key for
// the small set of top-level fields struct-tag validation can fail on.
func jsonFieldName(field string) string {
	names := map[string]string{
		"Name":         "name",
		"Port":         "port",
		"ShutdownPort": "shutdownPort",
		"HTTPSPort":    "httpsPort",
		"Type":         "runtime.type",
	}
	if name, ok := names[field]; ok {
		return name
	}
	return field
}

func validatePorts(m *Manifest) error {
	secondary := map[string]int{
		"shutdownPort": m.ShutdownPort,
		"httpsPort":    m.HTTPSPort,
	}
	if m.Monitoring.Enabled {
		secondary["monitoring.jmx.port"] = m.Monitoring.JMX.Port
	}

	for key, port := range secondary {
		if port == m.Port {
			return luerr.New(luerr.ManifestInvalid,
				luerr.WithKeyPath(key),
				luerr.WithRemedy(fmt.Sprintf("%s (%d) must differ from port (%d)", key, port, m.Port)))
		}
	}

	seen := map[int]string{m.Port: "port"}
	for key, port := range secondary {
		if other, ok := seen[port]; ok {
			return luerr.New(luerr.ManifestInvalid,
				luerr.WithKeyPath(key),
				luerr.WithRemedy(fmt.Sprintf("%s collides with %s on port %d", key, other, port)))
		}
		seen[port] = key
	}

	return nil
}

// ResolveName computes the instance name per §4.4 "resolve": explicit
// flag name, else manifest.name, else the project directory's basename.
func ResolveName(flagName, manifestName, projectDir string) string {
	if flagName != "" {
		return flagName
	}
	if manifestName != "" {
		return manifestName
	}
	return filepath.Base(filepath.Clean(projectDir))
}

// AvailableEnvironments returns the sorted environment names present in
// the tree, for UnknownEnvironment error messages.
func AvailableEnvironments(tree map[string]any) []string {
	envsRaw, ok := tree["environments"].(map[string]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(envsRaw))
	for name := range envsRaw {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}
