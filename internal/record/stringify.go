package record

// Stringify renders every Date and DateTime reachable from value as a String.
// Maps and lists are rewritten in place and returned.
func Stringify(value Value) Value {
	switch typed := value.(type) {
	case nil:
		return Null{}
	case String:
		return typed
	case Map:
		for key, inner := range typed {
			typed[key] = Stringify(inner)
		}
		return typed
	case List:
		for i := range typed {
			typed[i] = Stringify(typed[i])
		}
		return typed
	case Date:
		return String(typed.String())
	case DateTime:
		return String(typed.String())
	case Int, Float, Bool, Null:
		return typed
	default:
		panic("record: unknown value type")
	}
}
