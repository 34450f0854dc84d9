package runtime

import (
	"path/filepath"

	"github.com/cybersonic/lucli/internal/manifest"
)

// VendorRoot resolves the CATALINA_HOME-equivalent directory
// ConfigMaterializer needs as its template source (§4.6's Input.VendorRoot):
// the cached embedded distribution for the embedded variant, or the
// user-supplied install for the external-container variant. The
// container variant bakes its own engine into the image and has no
// vendor root on the host, so it returns an empty string.
func VendorRoot(runtimeType, homeDir string, m *manifest.Manifest) string {
	switch runtimeType {
	case "embedded":
		return filepath.Join(homeDir, expressCacheDirName, majorVersion(m.Version))
	case "external-container":
		return m.Runtime.CatalinaHome
	default:
		return ""
	}
}
