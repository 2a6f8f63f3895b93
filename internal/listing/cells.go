package listing

// YesNo renders a boolean table cell.
func YesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Deref renders an optional string cell.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
