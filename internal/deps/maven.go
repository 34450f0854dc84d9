package deps

import (
	"context"
	"fmt"
	"strings"

	"github.com/cybersonic/lucli/internal/manifest"
)

// defaultMavenRepo is used when a dependency doesn't name one via its
// Subpath override (a full repository base URL).
const defaultMavenRepo = "https://repo1.maven.org/maven2"

// fetchMaven resolves a `groupId:artifactId:version` coordinate (in
// dep.Ref) to its artifact URL and delegates to the same HTTP fetch
// path as an ordinary http dependency, per §4.7.
func fetchMaven(ctx context.Context, dep manifest.Dependency, dir string) (string, error) {
	url, err := mavenArtifactURL(dep)
	if err != nil {
		return "", err
	}
	return fetchHTTP(ctx, url, dir)
}

// mavenArtifactURL builds <repo>/<group-path>/<artifact>/<version>/<artifact>-<version>.jar
// from a groupId:artifactId:version coordinate.
func mavenArtifactURL(dep manifest.Dependency) (string, error) {
	parts := strings.Split(dep.Ref, ":")
	if len(parts) != 3 {
		return "", fmt.Errorf("maven coordinate %q: expected groupId:artifactId:version", dep.Ref)
	}
	groupID, artifactID, version := parts[0], parts[1], parts[2]
	if version == "" {
		version = dep.Version
	}
	if groupID == "" || artifactID == "" || version == "" {
		return "", fmt.Errorf("maven coordinate %q: groupId, artifactId, and version are all required", dep.Ref)
	}

	repo := defaultMavenRepo
	if dep.Subpath != "" {
		repo = strings.TrimSuffix(dep.Subpath, "/")
	}

	groupPath := strings.ReplaceAll(groupID, ".", "/")
	return fmt.Sprintf("%s/%s/%s/%s/%s-%s.jar", repo, groupPath, artifactID, version, artifactID, version), nil
}
