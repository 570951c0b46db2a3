// =============================================================================
// UPN QR to e-SLOG Converter - XML Writer Module
// =============================================================================
//
// This module builds and serializes generic XML element trees. The e-SLOG
// generator assembles its segments as Elements; this package knows nothing
// about invoices.
//
// OUTPUT SHAPE:
//   <?xml version="1.0" encoding="UTF-8"?>
//   <Invoice xmlns="urn:eslog:2.00" xmlns:xsi="...">   <!-- root + namespaces -->
//     <M_INVOIC Id="data">                             <!-- element attribute -->
//       <S_UNH>
//         <D_0062>2024-0117</D_0062>                   <!-- leaf with text -->
//         ...
//       </S_UNH>
//     </M_INVOIC>
//   </Invoice>
//
// Elements are written in insertion order; nothing is sorted.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is the encoding for the XML declaration.
	// Default: "UTF-8"
	Encoding string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		XMLVersion:            "1.0",
		Encoding:              "UTF-8",
	}
}

// =============================================================================
// ELEMENT TREE
// =============================================================================

// Element represents a generic XML element.
type Element struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Value      string
	Children   []*Element
}

// NewElement creates an empty element.
func NewElement(name string) *Element {
	return &Element{XMLName: xml.Name{Local: name}}
}

// Name returns the element's tag name.
func (e *Element) Name() string {
	return e.XMLName.Local
}

// Add appends a new empty child element and returns it.
func (e *Element) Add(name string) *Element {
	child := NewElement(name)
	e.Children = append(e.Children, child)
	return child
}

// AddText appends a child element holding value and returns the child.
func (e *Element) AddText(name, value string) *Element {
	child := e.Add(name)
	child.Value = value
	return child
}

// SetAttr sets (or replaces) an attribute.
func (e *Element) SetAttr(name, value string) *Element {
	for i := range e.Attributes {
		if e.Attributes[i].Name.Local == name {
			e.Attributes[i].Value = value
			return e
		}
	}
	e.Attributes = append(e.Attributes, xml.Attr{Name: xml.Name{Local: name}, Value: value})
	return e
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, attr := range e.Attributes {
		if attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}

// Child returns the first direct child with the given name, or nil.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name() == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns every direct child with the given name.
func (e *Element) ChildrenNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Name() == name {
			out = append(out, c)
		}
	}
	return out
}

// Find follows a slash-separated path of child names (first match at each
// step) and returns the element at the end, or nil.
func (e *Element) Find(path string) *Element {
	current := e
	for _, step := range strings.Split(path, "/") {
		if current = current.Child(step); current == nil {
			return nil
		}
	}
	return current
}

// =============================================================================
// DOCUMENT
// =============================================================================

// Namespace is a namespace declaration written on the root element.
// An empty Prefix declares the default namespace.
type Namespace struct {
	Prefix string
	URI    string
}

// Document is a root element plus its namespace declarations.
type Document struct {
	Root       *Element
	Namespaces []Namespace
}

// NewDocument creates a document with an empty root element.
func NewDocument(rootName string, namespaces ...Namespace) *Document {
	return &Document{
		Root:       NewElement(rootName),
		Namespaces: namespaces,
	}
}

// Bytes serializes the document with the default options.
func (d *Document) Bytes() []byte {
	return d.BytesWithOptions(DefaultGenerateOptions())
}

// BytesWithOptions serializes the document.
func (d *Document) BytesWithOptions(options GenerateOptions) []byte {
	var buffer bytes.Buffer

	// Write XML declaration if requested.
	if options.IncludeXMLDeclaration {
		buffer.WriteString(fmt.Sprintf("<?xml version=\"%s\" encoding=\"%s\"?>\n",
			options.XMLVersion, options.Encoding))
	}

	// Namespace declarations go first on the root, before its own attributes.
	root := *d.Root
	root.Attributes = append(namespaceAttrs(d.Namespaces), d.Root.Attributes...)

	writeElement(&buffer, &root, options.Indent, 0)

	return buffer.Bytes()
}

// namespaceAttrs renders namespace declarations as plain attributes.
func namespaceAttrs(namespaces []Namespace) []xml.Attr {
	attrs := make([]xml.Attr, 0, len(namespaces))
	for _, ns := range namespaces {
		name := "xmlns"
		if ns.Prefix != "" {
			name = "xmlns:" + ns.Prefix
		}
		attrs = append(attrs, xml.Attr{Name: xml.Name{Local: name}, Value: ns.URI})
	}
	return attrs
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element *Element, indent string, level int) {
	// Write indentation.
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	// Write opening tag.
	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)

	// Write attributes.
	for _, attr := range element.Attributes {
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", attr.Name.Local, escapeXML(attr.Value)))
	}

	// Check if element has children or value.
	if len(element.Children) == 0 && element.Value == "" {
		// Self-closing tag.
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	// Write value or children.
	if element.Value != "" {
		// Simple element with text value.
		buffer.WriteString(escapeXML(element.Value))
	} else {
		// Element with children.
		buffer.WriteString("\n")

		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}

		// Write indentation for closing tag.
		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	// Write closing tag.
	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML. Runes outside the XML 1.0
// Char production (most C0 controls, surrogates, U+FFFE, U+FFFF) are dropped;
// they cannot appear in a document even as character references.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		if !isXMLChar(r) {
			continue
		}
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

// isXMLChar reports whether r is allowed by the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// =============================================================================
// WELL-FORMEDNESS CHECK
// =============================================================================

// CheckWellFormed reports whether data is a well-formed XML document with a
// single root element. It does not validate against any schema.
func CheckWellFormed(data []byte) error {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	decoder.Strict = true

	depth := 0
	roots := 0
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("malformed XML: %w", err)
		}

		switch token.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}

	if roots != 1 {
		return fmt.Errorf("malformed XML: expected exactly one root element, found %d", roots)
	}

	return nil
}
