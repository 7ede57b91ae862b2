package views

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderError is returned when a view template can't be filled with the view and table names.
type RenderError struct {
	Key    string
	Reason string
}

func (e *RenderError) Error() string {
	if e.Key == "" {
		return "unable to render view template: " + e.Reason
	}
	return fmt.Sprintf("unable to render view template %v: %v", e.Key, e.Reason)
}

// Render fills the two positional placeholders of tmpl: argument 0 is the view name and argument 1
// the source table name. Fields are written {} (numbered automatically) or {0} / {1}, and {{ and }}
// produce literal braces. Both arguments must be referenced.
func Render(tmpl string, viewName string, tableName string) (string, error) {
	args := [2]string{viewName, tableName}
	var used [2]bool
	auto, manual := 0, false
	b := strings.Builder{}
	b.Grow(len(tmpl) + len(viewName) + len(tableName))
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", &RenderError{Reason: fmt.Sprintf("unmatched '{' at offset %v", i)}
			}
			field := tmpl[i+1 : i+1+end]
			var idx int
			if field == "" {
				if manual {
					return "", &RenderError{Reason: "cannot switch from manual field numbering to automatic"}
				}
				idx = auto
				auto++
			} else {
				if auto > 0 {
					return "", &RenderError{Reason: "cannot switch from automatic field numbering to manual"}
				}
				n, err := strconv.Atoi(field)
				if err != nil || n < 0 {
					return "", &RenderError{Reason: fmt.Sprintf("unsupported field {%v}", field)}
				}
				manual = true
				idx = n
			}
			if idx >= len(args) {
				return "", &RenderError{Reason: fmt.Sprintf("field index %v out of range; only the view and table names are available", idx)}
			}
			used[idx] = true
			b.WriteString(args[idx])
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", &RenderError{Reason: fmt.Sprintf("single '}' at offset %v", i)}
		default:
			b.WriteByte(c)
		}
	}
	if !used[0] || !used[1] {
		return "", &RenderError{Reason: "template must reference both the view name and the table name"}
	}
	return b.String(), nil
}
