package materialize

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cybersonic/lucli/internal/manifest"
)

const keystoreFileName = "keystore.p12"

// ServerXML models the subset of Tomcat/Lucee Express's server.xml this
// package patches (§4.6 output 1): the shutdown port, the plain HTTP
// connector's port, and an HTTPS connector it inserts or removes.
// Everything else round-trips through rawElement untouched.
type ServerXML struct {
	XMLName   xml.Name     `xml:"Server"`
	Port      string       `xml:"port,attr"`
	Shutdown  string       `xml:"shutdown,attr"`
	Listeners []rawElement `xml:"Listener"`
	Globals   []rawElement `xml:"GlobalNamingResources"`
	Service   ServiceXML   `xml:"Service"`
}

// ServiceXML models the single <Service> Lucee Express ships.
type ServiceXML struct {
	Name       string         `xml:"name,attr"`
	Listeners  []rawElement   `xml:"Listener"`
	Connectors []ConnectorXML `xml:"Connector"`
	Engine     EngineXML      `xml:"Engine"`
}

// ConnectorXML models one HTTP or HTTPS connector.
type ConnectorXML struct {
	Port         string `xml:"port,attr"`
	Protocol     string `xml:"protocol,attr,omitempty"`
	SSLEnabled   string `xml:"SSLEnabled,attr,omitempty"`
	Scheme       string `xml:"scheme,attr,omitempty"`
	RedirectPort string `xml:"redirectPort,attr,omitempty"`
	ClientAuth   string `xml:"clientAuth,attr,omitempty"`
	SSLProtocol  string `xml:"sslProtocol,attr,omitempty"`
	KeystoreFile string `xml:"keystoreFile,attr,omitempty"`
	KeystorePass string `xml:"keystorePass,attr,omitempty"`
	KeystoreType string `xml:"keystoreType,attr,omitempty"`
}

// EngineXML models the <Engine> wrapper; its <Host> children are not
// touched by this step (web.xml handles servlet registration).
type EngineXML struct {
	Name        string       `xml:"name,attr"`
	DefaultHost string       `xml:"defaultHost,attr"`
	Hosts       []rawElement `xml:"Host"`
}

func keystorePath(instDir string) string {
	return filepath.Join(instDir, "conf", keystoreFileName)
}

// patchServerXML reads the vendor template's server.xml, sets the
// shutdown and HTTP connector ports from the manifest, and inserts or
// removes an HTTPS connector to match https.enabled, writing the result
// into the instance's isolated conf/.
func (mz *Materializer) patchServerXML(m *manifest.Manifest, in *Input) error {
	templatePath := filepath.Join(in.VendorRoot, "conf", "server.xml")
	//nolint:gosec // G304: vendorRoot is LuCLI's own downloaded/pointed-at runtime tree
	data, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("read server.xml template: %w", err)
	}

	var doc ServerXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse server.xml: %w", err)
	}

	doc.Shutdown = "SHUTDOWN"
	if m.ShutdownPort > 0 {
		doc.Port = strconv.Itoa(m.ShutdownPort)
	}

	connectors := make([]ConnectorXML, 0, len(doc.Service.Connectors)+1)
	var plain *ConnectorXML
	for _, c := range doc.Service.Connectors {
		if strings.EqualFold(c.SSLEnabled, "true") || c.Scheme == "https" {
			continue // dropped; re-added below if https is still enabled
		}
		c.Port = strconv.Itoa(m.Port)
		connectors = append(connectors, c)
	}
	if len(connectors) == 0 {
		connectors = append(connectors, ConnectorXML{Port: strconv.Itoa(m.Port), Protocol: "HTTP/1.1"})
	}
	plain = &connectors[0]

	if m.HTTPS.Enabled {
		httpsPort := m.HTTPSPort
		if httpsPort == 0 {
			httpsPort = m.HTTPS.Port
		}
		if m.HTTPS.Redirect {
			plain.RedirectPort = strconv.Itoa(httpsPort)
		}
		keystore := m.HTTPS.Keystore
		if keystore == "" {
			keystore = keystorePath(in.Instance.Dir)
		}
		connectors = append(connectors, ConnectorXML{
			Port:         strconv.Itoa(httpsPort),
			Protocol:     "org.apache.coyote.http11.Http11NioProtocol",
			SSLEnabled:   "true",
			Scheme:       "https",
			ClientAuth:   "false",
			SSLProtocol:  "TLS",
			KeystoreFile: keystore,
			KeystorePass: m.HTTPS.KeystorePassword,
			KeystoreType: "PKCS12",
		})
	}
	doc.Service.Connectors = connectors

	out, err := xml.MarshalIndent(&doc, "", "  ")
	if err != nil {
		return fmt.Errorf("render server.xml: %w", err)
	}
	out = append([]byte(xml.Header), out...)

	return atomicWrite(filepath.Join(in.Instance.Dir, "conf", "server.xml"), out)
}
