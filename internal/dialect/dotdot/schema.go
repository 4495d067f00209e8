package dotdot

import "encoding/xml"

// Element names match on local name, so zcl:, type: and xi: prefixes are
// accepted without declaring namespaces.

type xmlLibrary struct {
	XMLName  xml.Name
	Types    []xmlType    `xml:"type"`
	Includes []xmlInclude `xml:"include"`
	Global   *xmlSide     `xml:"global"`
}

type xmlType struct {
	Short       string `xml:"short,attr"`
	Name        string `xml:"name,attr"`
	ID          string `xml:"id,attr"`
	Size        string `xml:"size,attr"`
	Discrete    string `xml:"discrete,attr"`
	Analog      string `xml:"analog,attr"`
	Signed      string `xml:"signed,attr"`
	Invalid     string `xml:"invalid,attr"`
	Description string `xml:"description,attr"`
}

type xmlInclude struct {
	Href string `xml:"href,attr"`
}

type xmlCluster struct {
	XMLName  xml.Name
	ID       string   `xml:"id,attr"`
	Name     string   `xml:"name,attr"`
	Revision string   `xml:"revision,attr"`
	Server   *xmlSide `xml:"server"`
	Client   *xmlSide `xml:"client"`
}

type xmlSide struct {
	Attributes []xmlAttribute `xml:"attributes>attribute"`
	Commands   []xmlCommand   `xml:"commands>command"`
}

type xmlEnumeration struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type xmlElement struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
	Mask string `xml:"mask,attr"`
}

type xmlRestriction struct {
	Enumerations []xmlEnumeration `xml:"enumeration"`
	MinLength    *xmlValue        `xml:"minLength"`
	MaxLength    *xmlValue        `xml:"maxLength"`
}

type xmlValue struct {
	Value string `xml:"value,attr"`
}

type xmlBitmap struct {
	Elements []xmlElement `xml:"element"`
}

type xmlAttribute struct {
	ID             string          `xml:"id,attr"`
	Name           string          `xml:"name,attr"`
	Type           string          `xml:"type,attr"`
	Writable       string          `xml:"writable,attr"`
	Readable       string          `xml:"readable,attr"`
	Default        string          `xml:"default,attr"`
	Min            string          `xml:"min,attr"`
	Max            string          `xml:"max,attr"`
	Required       string          `xml:"required,attr"`
	ReportRequired string          `xml:"reportRequired,attr"`
	SceneRequired  string          `xml:"sceneRequired,attr"`
	Deprecated     string          `xml:"deprecated,attr"`
	Restriction    *xmlRestriction `xml:"restriction"`
	Bitmap         *xmlBitmap      `xml:"bitmap"`
}

type xmlField struct {
	ID          string          `xml:"id,attr"`
	Name        string          `xml:"name,attr"`
	Type        string          `xml:"type,attr"`
	Array       string          `xml:"array,attr"`
	PresentIf   string          `xml:"presentIf,attr"`
	Deprecated  string          `xml:"deprecated,attr"`
	Restriction *xmlRestriction `xml:"restriction"`
	Bitmap      *xmlBitmap      `xml:"bitmap"`
}

type xmlCommand struct {
	ID         string     `xml:"id,attr"`
	Name       string     `xml:"name,attr"`
	Required   string     `xml:"required,attr"`
	Deprecated string     `xml:"deprecated,attr"`
	Fields     []xmlField `xml:"fields>field"`
}
