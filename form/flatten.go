package form

import (
	"fmt"

	"github.com/lvillar/formfill/reader"
	"github.com/lvillar/formfill/schema"
)

// Flatten returns fields and a payload that, rendered over the pages of
// doc, draw the current value of every widget as static content: text and
// choice values as text, checked buttons as ticks. Empty values, unchecked
// buttons and signatures draw nothing and are left out.
//
// Each widget gets its own payload key, so widgets sharing a field name
// render independently.
func Flatten(doc *reader.Document) ([]schema.Field, map[string]any) {
	var fields []schema.Field
	data := make(map[string]any)
	for i, w := range doc.Widgets() {
		f, ok := convert(doc, &w)
		if !ok {
			continue
		}
		var v any
		switch f.Type {
		case schema.TypeText, schema.TypeTextarea:
			if w.Value == "" {
				continue
			}
			v = w.Value
		case schema.TypeCheckbox, schema.TypeRadio:
			if !w.Checked() {
				continue
			}
			v = true
		default:
			continue
		}
		key := fmt.Sprintf("widget%d", i)
		f.ID, f.Key = key, key
		fields = append(fields, f)
		data[key] = v
	}
	return fields, data
}
