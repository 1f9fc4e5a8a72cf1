// Package codec maps generic state values to and from hierarchical XML
// documents. The mapping is deliberately schema-free: attributes become
// record entries, repeated tags become lists, and a childless node with
// bare text collapses to a scalar. Anything schema-shaped (always-list
// fields) is normalized after decoding, not here.
//
// Round-trip fidelity holds for records, scalars and lists of records
// or scalars. A list nested directly inside another list has no tag of
// its own, so it flattens into the outer repeated element on encode and
// decodes back as one flat list.
package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/zhouzirui/storyforge/internal/model/state"
)

// indentWidth matches the document layout of every save the system has
// ever written.
const indentWidth = 4

// RootAttributes is the fixed, ordered allow-list of scalar field names
// pulled up to the root element's attributes on encode. Absent fields
// are omitted, never defaulted. Structured player fields (stats, skills,
// inventory) are excluded so they serialize as child elements.
var RootAttributes = []string{
	"id", "date", "gamemaster", "campaignName", "inGameDate",
	"currentLocation", "lastRecap",
	"playerName", "playerRace", "playerClass", "playerBackground",
	"playerGender", "playerAge", "playerHeight", "playerWeight",
	"playerAlignment", "playerDeity", "playerBiography",
	"playerPersonalityTraits", "playerIdeals", "playerBonds",
	"playerFlaws", "playerLanguages", "playerEquipment", "playerSpells",
	"playerGold", "playerXP", "playerLevel", "playerHitPoints",
	"playerMaxHitPoints", "playerArmorClass", "playerInitiative",
	"playerSpeed", "playerProficiencies", "playerSaves", "playerAttacks",
	"playerFeatures", "playerTraits",
}

var ErrNoRoot = errors.New("document has no root element")

// Encode renders a value as a pretty-printed document rooted at rootTag.
func Encode(v *state.Value, rootTag string) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(rootTag)

	if v != nil && v.Kind() == state.KindRecord {
		pulled := make(map[string]bool, len(RootAttributes))
		for _, name := range RootAttributes {
			if child, ok := v.Get(name); ok && child.Kind() == state.KindScalar {
				root.CreateAttr(name, child.Text())
				pulled[name] = true
			}
		}
		for _, key := range v.Keys() {
			if pulled[key] {
				continue
			}
			child, _ := v.Get(key)
			encodeField(root, key, child)
		}
	} else if v != nil {
		encodeInto(root, v)
	}

	doc.Indent(indentWidth)
	return doc
}

// EncodeToBytes renders a value as document bytes.
func EncodeToBytes(v *state.Value, rootTag string) ([]byte, error) {
	data, err := Encode(v, rootTag).WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s document: %w", rootTag, err)
	}
	return data, nil
}

// encodeField writes one record entry: lists render as repeated elements
// under the same tag, everything else as a single element.
func encodeField(parent *etree.Element, key string, v *state.Value) {
	if v == nil {
		return
	}
	if v.Kind() == state.KindList {
		for _, item := range v.Items() {
			if item.Kind() == state.KindList {
				// Nested lists have no tag of their own; flatten into
				// the same repeated element.
				encodeField(parent, key, item)
				continue
			}
			encodeInto(parent.CreateElement(key), item)
		}
		return
	}
	encodeInto(parent.CreateElement(key), v)
}

func encodeInto(elem *etree.Element, v *state.Value) {
	switch v.Kind() {
	case state.KindScalar:
		elem.SetText(v.Text())
	case state.KindRecord:
		for _, key := range v.Keys() {
			child, _ := v.Get(key)
			if key == state.TextKey {
				elem.SetText(child.Text())
				continue
			}
			encodeField(elem, key, child)
		}
	}
}

// Decode converts a parsed document back into a generic value.
func Decode(doc *etree.Document) (*state.Value, error) {
	root := doc.Root()
	if root == nil {
		return nil, ErrNoRoot
	}
	return decodeElement(root), nil
}

// DecodeBytes parses and decodes document bytes.
func DecodeBytes(data []byte) (*state.Value, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return Decode(doc)
}

// decodeElement mirrors the encode rules. A single child tag decodes to
// a bare value while two or more promote to a list; that asymmetry is an
// invariant of the format, not an accident, and callers that need
// always-list semantics normalize afterwards.
func decodeElement(elem *etree.Element) *state.Value {
	rec := state.NewRecord()
	for _, attr := range elem.Attr {
		rec.Set(attr.Key, state.Scalar(attr.Value))
	}

	children := elem.ChildElements()
	text := strings.TrimSpace(elem.Text())

	if len(children) == 0 {
		if text != "" && rec.Len() == 0 {
			return state.Scalar(text)
		}
		if text != "" {
			rec.Set(state.TextKey, state.Scalar(text))
		}
		return rec
	}

	for _, child := range children {
		rec.Merge(child.Tag, decodeElement(child))
	}
	return rec
}
