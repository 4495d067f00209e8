package dialect

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/vvka-141/zclload/pkg/zclload"
)

// Kind is a detected file dialect.
type Kind int

const (
	KindUnknown Kind = iota
	KindJSONManifest
	KindPropertiesManifest
	KindZCLXML
	KindDotdotXML
)

func (k Kind) String() string {
	switch k {
	case KindJSONManifest:
		return "json-manifest"
	case KindPropertiesManifest:
		return "properties-manifest"
	case KindZCLXML:
		return "zcl-xml"
	case KindDotdotXML:
		return "dotdot-xml"
	default:
		return "unknown"
	}
}

// IsManifest reports whether k is a top-level manifest dialect.
func (k Kind) IsManifest() bool {
	return k == KindJSONManifest || k == KindPropertiesManifest
}

// DetectByExtension classifies a path by its extension. XML files need their
// root element to pick between the two XML dialects; use DetectXML for that.
func DetectByExtension(path string) (Kind, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return KindJSONManifest, nil
	case ".properties":
		return KindPropertiesManifest, nil
	case ".xml":
		return KindZCLXML, nil
	}
	return KindUnknown, fmt.Errorf("%s: %w", path, zclload.ErrUnknownDialect)
}

// Detect classifies a file using its extension and, for XML, its root element.
func Detect(path string, content []byte) (Kind, error) {
	kind, err := DetectByExtension(path)
	if err != nil || kind != KindZCLXML {
		return kind, err
	}
	return DetectXML(path, content)
}

// DetectXML reads the root element of an XML document.
// configurator and zap select the ZCL dialect; library and cluster (in any
// namespace) select dotdot.
func DetectXML(path string, content []byte) (Kind, error) {
	root, err := RootElement(content)
	if err != nil {
		return KindUnknown, WrapXMLError(err, path)
	}
	switch root {
	case "configurator", "zap":
		return KindZCLXML, nil
	case "library", "cluster":
		return KindDotdotXML, nil
	}
	return KindUnknown, fmt.Errorf("%s: root element <%s>: %w", path, root, zclload.ErrUnknownDialect)
}

// RootElement returns the local name of the first start element.
func RootElement(content []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", errors.New("document has no root element")
			}
			return "", err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Local, nil
		}
	}
}
