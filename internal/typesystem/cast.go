package typesystem

// CanCast reports whether `from as to` is a valid primitive cast. Any two
// of bool, char and the integer types cast to each other. Aggregates,
// references and strings never cast.
func CanCast(from, to Type) bool {
	if IsUnresolved(from) || IsUnresolved(to) || IsNever(from) {
		return true
	}
	return castable(from) && castable(to)
}

func castable(t Type) bool {
	return IsInteger(t) || IsBool(t) || IsChar(t)
}
