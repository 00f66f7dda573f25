package opcua

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/jhoicas/almacen-bridge/internal/application/processimage"
	"github.com/jhoicas/almacen-bridge/internal/domain/tags"
)

const (
	nodeSetXMLNS = "http://opcfoundation.org/UA/2011/03/UANodeSet.xsd"
	typesXMLNS   = "http://opcfoundation.org/UA/2008/02/Types.xsd"
	warehouseID  = "ns=1;s=Warehouse"
)

// Point valor actual de un tag para el modelo exportado.
type Point struct {
	Def   tags.Definition
	Value any
}

// NodeSet genera un UANodeSet2 con el objeto Warehouse y una variable por punto.
// Los índices de namespace del documento son locales: ns=1 es namespaceURI.
func NodeSet(namespaceURI string, points []Point) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	root := doc.CreateElement("UANodeSet")
	root.CreateAttr("xmlns", nodeSetXMLNS)
	root.CreateAttr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")

	root.CreateElement("NamespaceUris").CreateElement("Uri").SetText(namespaceURI)

	aliases := root.CreateElement("Aliases")
	for _, a := range [][2]string{
		{"Int64", "i=8"},
		{"String", "i=12"},
		{"Organizes", "i=35"},
		{"HasTypeDefinition", "i=40"},
		{"HasComponent", "i=47"},
	} {
		el := aliases.CreateElement("Alias")
		el.CreateAttr("Alias", a[0])
		el.SetText(a[1])
	}

	obj := root.CreateElement("UAObject")
	obj.CreateAttr("NodeId", warehouseID)
	obj.CreateAttr("BrowseName", "1:Warehouse")
	obj.CreateElement("DisplayName").SetText("Warehouse")
	refs := obj.CreateElement("References")
	addRef(refs, "Organizes", "i=85", false) // ObjectsFolder
	addRef(refs, "HasTypeDefinition", "i=58", true)

	for _, p := range points {
		nodeID := "ns=1;s=" + tags.BrowseName(p.Def.Tag)
		addRef(refs, "HasComponent", nodeID, true)

		v := root.CreateElement("UAVariable")
		v.CreateAttr("NodeId", nodeID)
		v.CreateAttr("BrowseName", "1:"+string(p.Def.Tag))
		v.CreateAttr("ParentNodeId", warehouseID)
		v.CreateAttr("DataType", dataType(p.Def.Kind))
		v.CreateAttr("AccessLevel", accessLevel(p.Def.Writable))
		v.CreateAttr("UserAccessLevel", accessLevel(p.Def.Writable))
		v.CreateElement("DisplayName").SetText(string(p.Def.Tag))
		if len(p.Def.Allowed) > 0 {
			v.CreateElement("Description").SetText("Allowed: " + strings.Join(p.Def.Allowed, ", "))
		}
		vrefs := v.CreateElement("References")
		addRef(vrefs, "HasTypeDefinition", "i=63", true) // BaseDataVariableType
		addRef(vrefs, "HasComponent", warehouseID, false)

		val := v.CreateElement("Value").CreateElement(dataType(p.Def.Kind))
		val.CreateAttr("xmlns", typesXMLNS)
		val.SetText(fmt.Sprint(p.Value))
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

// SnapshotNodeSet exporta los valores actuales de la imagen de proceso.
func SnapshotNodeSet(namespaceURI string, values []processimage.Value) ([]byte, error) {
	points := make([]Point, 0, len(values))
	for _, v := range values {
		def, ok := tags.Lookup(v.Tag)
		if !ok {
			continue
		}
		points = append(points, Point{Def: def, Value: v.Value})
	}
	return NodeSet(namespaceURI, points)
}

func addRef(parent *etree.Element, refType, target string, forward bool) {
	r := parent.CreateElement("Reference")
	r.CreateAttr("ReferenceType", refType)
	if !forward {
		r.CreateAttr("IsForward", "false")
	}
	r.SetText(target)
}

func dataType(k tags.Kind) string {
	if k == tags.KindInteger {
		return "Int64"
	}
	return "String"
}

// accessLevel CurrentRead=1, CurrentWrite=2.
func accessLevel(writable bool) string {
	if writable {
		return "3"
	}
	return "1"
}
