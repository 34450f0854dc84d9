package manifest

// defaultTree returns the built-in defaults as a JSON-shaped tree, the
// starting point for step 1 of the merge algorithm (§4.1).
func defaultTree() map[string]any {
	return map[string]any{
		"host":           "localhost",
		"port":           8888,
		"shutdownPort":   8889,
		"httpsPort":      8443,
		"webroot":        ".",
		"version":        "6",
		"openBrowser":    true,
		"openBrowserURL": "",
		"enableLucee":    true,
		"enableRest":     false,
		"jvm": map[string]any{
			"minMemory":      "512m",
			"maxMemory":      "1024m",
			"additionalArgs": []any{},
		},
		"monitoring": map[string]any{
			"enabled": false,
			"jmx": map[string]any{
				"port": 9999,
			},
		},
		"urlRewrite": map[string]any{
			"enabled":    false,
			"routerFile": "index.cfm",
		},
		"admin": map[string]any{
			"enabled":  true,
			"password": "",
		},
		"https": map[string]any{
			"enabled":  false,
			"port":     8443,
			"redirect": false,
			"keystore": "",
		},
		"runtime": map[string]any{
			"type": "embedded",
		},
		"agents":          map[string]any{},
		"environments":    map[string]any{},
		"dependencies":    map[string]any{},
		"devDependencies": map[string]any{},
		"dependencySettings": map[string]any{
			"installLocation":          "dependencies",
			"autoInstallOnServerStart": true,
			"verifyIntegrity":          true,
			"pruneOnInstall":           false,
			"installMethod":            "symlink",
			"installDevDependencies":   false,
		},
	}
}
