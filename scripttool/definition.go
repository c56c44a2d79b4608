package scripttool

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"github.com/erptools/go-applus/sqlgen"
)

// XMLDefinition is the parsed definition document of a business
// object, rooted at its object node.
type XMLDefinition struct {
	Object *etree.Element
}

// parseXMLDefinition parses a definition document as returned by
// getXMLDefinition2. Documents without an md5 node were not actually
// found on disk and yield nil.
func parseXMLDefinition(raw string) (*XMLDefinition, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return nil, fmt.Errorf("scripttool: parse definition: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, nil
	}
	if root.FindElement("md5") == nil {
		return nil, nil
	}
	obj := root.FindElement("object")
	if obj == nil {
		return nil, nil
	}
	return &XMLDefinition{Object: obj}, nil
}

// String renders the definition back to XML.
func (d *XMLDefinition) String() string {
	doc := etree.NewDocument()
	doc.SetRoot(d.Object.Copy())
	s, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return s
}

// Duplicate extracts the properties configured for duplication and
// whether they are to be excluded (true) or included (false). A missing
// duplicate node yields an empty exclude set, meaning everything is
// copied.
func (d *XMLDefinition) Duplicate() (map[string]bool, bool) {
	fields := map[string]bool{}
	exclude := true

	dupl := d.Object.FindElement("duplicate")
	if dupl == nil {
		return fields, exclude
	}

	if ty := dupl.SelectAttrValue("type", "exclude"); !strings.EqualFold(ty, "exclude") {
		exclude = false
	}
	for _, el := range dupl.ChildElements() {
		if el.Tag != "property" {
			continue
		}
		if ref := el.SelectAttrValue("ref", ""); ref != "" {
			fields[sqlgen.NormalizeField(ref)] = true
		}
	}
	return fields, exclude
}
