package layout

import "strings"

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Format renders l as a nested OpenSCAD array literal.
//
// Rows are separated by ",\n" and indented by two spaces; tokens are double
// quoted and separated by ", ". Backslashes and double quotes inside tokens
// are escaped. An empty layout renders as "[\n\n]".
//
// Format is a pure function: equal layouts always produce identical text.
func Format(l Layout) string {
	var b strings.Builder
	b.WriteString("[\n")
	for i, row := range l {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString("  [")
		for j, tok := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('"')
			b.WriteString(quoteEscaper.Replace(tok))
			b.WriteByte('"')
		}
		b.WriteString("]")
	}
	b.WriteString("\n]")
	return b.String()
}

// String implements fmt.Stringer using [Format].
func (l Layout) String() string {
	return Format(l)
}
