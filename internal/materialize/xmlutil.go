package materialize

import "encoding/xml"

// rawElement preserves an XML element this package does not need to
// inspect — attributes and inner content round-trip untouched, which is
// how both descriptor patchers keep the vendor template's other
// elements (Listener, GlobalNamingResources, session-config, and so on)
// intact across a read/mutate/write cycle.
type rawElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   string     `xml:",innerxml"`
}
