package ir

// VariableRef is a variable reference embedded in a field value:
// an object carrying an id and/or a name, optionally a type.
type VariableRef struct {
	ID   string
	Name string
	Type string
}

// AsVariableRef reports whether v is an embedded variable reference.
// Only objects restricted to the id/name/type keys with at least one of id
// or name set qualify, so arbitrary object-valued fields are not mistaken
// for references.
func AsVariableRef(v IRValue) (VariableRef, bool) {
	obj, ok := v.(IRObject)
	if !ok || len(obj) == 0 {
		return VariableRef{}, false
	}
	for k, val := range obj {
		switch k {
		case "id", "name", "type":
			switch val.(type) {
			case IRString, IRNull:
			default:
				return VariableRef{}, false
			}
		default:
			return VariableRef{}, false
		}
	}
	ref := VariableRef{
		ID:   obj.StringAt("id"),
		Name: obj.StringAt("name"),
		Type: obj.StringAt("type"),
	}
	if ref.ID == "" && ref.Name == "" {
		return VariableRef{}, false
	}
	return ref, true
}

// Value encodes the reference as a field value.
func (r VariableRef) Value() IRObject {
	obj := IRObject{}
	if r.ID != "" {
		obj["id"] = IRString(r.ID)
	}
	if r.Name != "" {
		obj["name"] = IRString(r.Name)
	}
	if r.Type != "" {
		obj["type"] = IRString(r.Type)
	}
	return obj
}

// Variable converts the reference into a variable table entry.
func (r VariableRef) Variable() Variable {
	return Variable{ID: r.ID, Name: r.Name, Type: r.Type}
}
