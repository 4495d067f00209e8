package services

const typesXML = `<?xml version="1.0"?>
<zap>
  <atomic>
    <type id="0x10" name="boolean" size="1" discrete="true"/>
    <type id="0x20" name="int8u" size="1" analog="true"/>
    <type id="0x21" name="int16u" size="2" analog="true"/>
    <type id="0x30" name="enum8" size="1" discrete="true"/>
  </atomic>
  <enum name="DemoEnum" type="ENUM8">
    <item name="A" value="0x00"/>
    <item name="B" value="0x01"/>
  </enum>
</zap>`

const generalXML = `<?xml version="1.0"?>
<configurator>
  <cluster>
    <name>On/Off</name>
    <domain>General</domain>
    <code>0x0006</code>
    <define>ON_OFF_CLUSTER</define>
    <attribute side="server" code="0x0000" define="ON_OFF" type="BOOLEAN">OnOff</attribute>
    <attribute side="server" code="0x0001" define="DEMO" type="DemoEnum">Demo</attribute>
    <command source="client" code="0x00" name="Off">
      <description>Turn off.</description>
    </command>
  </cluster>
  <global>
    <attribute side="either" code="0xFFFD" define="CLUSTER_REVISION" type="int16u">ClusterRevision</attribute>
  </global>
</configurator>`

// generalXMLv2 adds one attribute to generalXML.
const generalXMLv2 = `<?xml version="1.0"?>
<configurator>
  <cluster>
    <name>On/Off</name>
    <domain>General</domain>
    <code>0x0006</code>
    <define>ON_OFF_CLUSTER</define>
    <attribute side="server" code="0x0000" define="ON_OFF" type="BOOLEAN">OnOff</attribute>
    <attribute side="server" code="0x0001" define="DEMO" type="DemoEnum">Demo</attribute>
    <attribute side="server" code="0x0002" define="COUNT" type="int8u">Count</attribute>
    <command source="client" code="0x00" name="Off">
      <description>Turn off.</description>
    </command>
  </cluster>
  <global>
    <attribute side="either" code="0xFFFD" define="CLUSTER_REVISION" type="int16u">ClusterRevision</attribute>
  </global>
</configurator>`

// extensionXML extends On/Off and a cluster nobody defines.
const extensionXML = `<?xml version="1.0"?>
<configurator>
  <clusterExtension code="0x0006">
    <attribute side="server" code="0x4100" define="EXTRA" type="DemoEnum" manufacturerCode="0x1002">Extra</attribute>
  </clusterExtension>
  <clusterExtension code="0x0999">
    <attribute side="server" code="0x4101" type="int8u">Nowhere</attribute>
  </clusterExtension>
</configurator>`

const manufacturersXML = `<map>
  <mapping code="0x1002" translation="Ember"/>
  <mapping code="0x1003" translation="Other"/>
</map>`

const libraryXML = `<?xml version="1.0"?>
<zcl:library xmlns:zcl="http://zigbee.org/zcl/clusters" xmlns:type="http://zigbee.org/zcl/types" xmlns:xi="http://www.w3.org/2001/XInclude">
  <type:type short="bool" name="Boolean" id="10" size="1" discrete="true"/>
  <type:type short="uint8" name="Unsigned 8-bit integer" id="20" size="1" analog="true"/>
  <type:type short="enum8" name="8-bit enumeration" id="30" size="1" discrete="true"/>
  <xi:include href="OnOff.xml" parse="xml"/>
</zcl:library>`

const dotdotOnOffXML = `<?xml version="1.0"?>
<zcl:cluster xmlns:zcl="http://zigbee.org/zcl/clusters" xmlns:type="http://zigbee.org/zcl/types" id="0006" revision="2" name="On/Off">
  <server>
    <attributes>
      <attribute id="0000" name="OnOff" type="bool" writable="false" default="0" required="true"/>
    </attributes>
    <commands>
      <command id="00" name="Off" required="true"/>
    </commands>
  </server>
</zcl:cluster>`

// demo writes a zcl.json listing files, plus the standard sub-files.
func (f *fixture) demo(files ...string) {
	f.fs.AddFile("zcl/types.xml", typesXML)
	f.fs.AddFile("zcl/general.xml", generalXML)
	f.manifest(`{"xmlRoot": "./zcl", "xmlFile": [` + quoted(files) + `]}`)
}

func (f *fixture) manifest(content string) {
	f.fs.AddFile("zcl.json", content)
}

func quoted(names []string) string {
	s := ""
	for i, n := range names {
		if i > 0 {
			s += ", "
		}
		s += `"` + n + `"`
	}
	return s
}
