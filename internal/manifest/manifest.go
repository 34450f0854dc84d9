// Package manifest implements the ManifestLoader component: it reads,
// validates, layer-merges, and substitutes the configuration that
// describes one project's embedded CFML server instance.
package manifest

// Manifest is the fully resolved configuration for one project start.
// The Manifest that Resolve returns is decoded before substitution;
// every scalar value is substituted once the resolved tree has been run
// through envsubst and decoded again with Decode, except inside the two
// protected zones (Configuration and JVM.AdditionalArgs) which carry
// their literal `${...}` tokens through for the downstream engine.
type Manifest struct {
	Name           string `mapstructure:"name" validate:"required"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	ShutdownPort   int    `mapstructure:"shutdownPort" validate:"gt=0,lt=65536"`
	HTTPSPort      int    `mapstructure:"httpsPort" validate:"gt=0,lt=65536"`
	Webroot        string `mapstructure:"webroot"`
	Version        string `mapstructure:"version"`
	OpenBrowser    bool   `mapstructure:"openBrowser"`
	OpenBrowserURL string `mapstructure:"openBrowserURL"`
	EnableLucee    bool   `mapstructure:"enableLucee"`
	EnableRest     bool   `mapstructure:"enableRest"`

	ConfigurationFile string         `mapstructure:"configurationFile"`
	Configuration     map[string]any `mapstructure:"configuration"`

	JVM        JVMConfig        `mapstructure:"jvm" validate:"-"`
	Monitoring MonitoringConfig `mapstructure:"monitoring" validate:"-"`
	URLRewrite URLRewriteConfig `mapstructure:"urlRewrite" validate:"-"`
	Admin      AdminConfig      `mapstructure:"admin" validate:"-"`
	HTTPS      HTTPSConfig      `mapstructure:"https" validate:"-"`
	Runtime    RuntimeConfig    `mapstructure:"runtime"`

	Agents       map[string]AgentConfig `mapstructure:"agents"`
	Environments map[string]any         `mapstructure:"environments"`

	Dependencies       map[string]Dependency `mapstructure:"dependencies"`
	DevDependencies    map[string]Dependency `mapstructure:"devDependencies"`
	DependencySettings DependencySettings    `mapstructure:"dependencySettings"`
}

// JVMConfig holds JVM memory and passthrough argument settings.
type JVMConfig struct {
	MinMemory      string   `mapstructure:"minMemory"`
	MaxMemory      string   `mapstructure:"maxMemory"`
	AdditionalArgs []string `mapstructure:"additionalArgs"`
}

// MonitoringConfig controls JMX exposure.
type MonitoringConfig struct {
	Enabled bool      `mapstructure:"enabled"`
	JMX     JMXConfig `mapstructure:"jmx"`
}

// JMXConfig configures the JMX remote port.
type JMXConfig struct {
	Port int `mapstructure:"port"`
}

// URLRewriteConfig controls pretty-URL routing.
type URLRewriteConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	RouterFile string `mapstructure:"routerFile"`
}

// AdminConfig controls the engine admin console.
type AdminConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Password string `mapstructure:"password"`
}

// HTTPSConfig controls the secondary TLS connector.
type HTTPSConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	Port             int    `mapstructure:"port"`
	Redirect         bool   `mapstructure:"redirect"`
	Keystore         string `mapstructure:"keystore"`
	KeystorePassword string `mapstructure:"keystorePassword"`
}

// RuntimeConfig selects and configures a RuntimeProvider variant.
type RuntimeConfig struct {
	Type          string `mapstructure:"type" validate:"oneof=embedded external-container container"`
	Variant       string `mapstructure:"variant"`
	CatalinaHome  string `mapstructure:"catalinaHome"`
	Image         string `mapstructure:"image"`
	Tag           string `mapstructure:"tag"`
	ContainerName string `mapstructure:"containerName"`
}

// AgentConfig configures one named JVM agent.
type AgentConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	JVMArgs     []string `mapstructure:"jvmArgs"`
	Description string   `mapstructure:"description"`
}

// Dependency is one declared dependency entry.
type Dependency struct {
	Kind        string `mapstructure:"kind"`   // cfml | jar | extension | java-artifact
	Source      string `mapstructure:"source"` // git | http | file | maven
	Ref         string `mapstructure:"ref"`    // url, coordinate, or path, depending on Source
	Version     string `mapstructure:"version"`
	Subpath     string `mapstructure:"subpath"`
	Mapping     string `mapstructure:"mapping"`     // virtual path exposed to the engine, cfml/extension kinds only
	InstallPath string `mapstructure:"installPath"` // relative to the project root; defaults to dependencies/<name>
}

// DependencySettings controls C7's install behavior.
type DependencySettings struct {
	InstallLocation          string `mapstructure:"installLocation"`
	AutoInstallOnServerStart bool   `mapstructure:"autoInstallOnServerStart"`
	VerifyIntegrity          bool   `mapstructure:"verifyIntegrity"`
	PruneOnInstall           bool   `mapstructure:"pruneOnInstall"`
	InstallMethod            string `mapstructure:"installMethod"` // symlink | copy
	InstallDevDependencies   bool   `mapstructure:"installDevDependencies"`
}

// Override is one inline `key=value` CLI override, applied in order
// during step 5 of the merge algorithm (§4.1).
type Override struct {
	Key   string // dot-notation path, e.g. "jvm.maxMemory"
	Value string // raw textual value; typed during application
}
