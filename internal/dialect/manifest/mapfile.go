package manifest

import (
	"encoding/xml"

	"github.com/vvka-141/zclload/internal/dialect"
	"github.com/vvka-141/zclload/internal/model"
)

type xmlMap struct {
	XMLName  xml.Name
	Mappings []struct {
		Code        string `xml:"code,attr"`
		Translation string `xml:"translation,attr"`
	} `xml:"mapping"`
}

// ParseMapFile reads a manufacturer or profile code map:
//
//	<map>
//	  <mapping code="0x1002" translation="Ember"/>
//	</map>
func ParseMapFile(path string, content []byte) ([]model.PackageOption, error) {
	var doc xmlMap
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, dialect.WrapXMLError(err, path)
	}
	if doc.XMLName.Local != "map" {
		return nil, dialect.NewParseError(path, doc.XMLName.Local, "unexpected root element, want <map>")
	}
	options := make([]model.PackageOption, 0, len(doc.Mappings))
	for i, m := range doc.Mappings {
		if m.Code == "" {
			return nil, dialect.NewParseError(path, "mapping", "entry %d has no code", i)
		}
		options = append(options, model.PackageOption{Code: m.Code, Label: m.Translation})
	}
	return options, nil
}
