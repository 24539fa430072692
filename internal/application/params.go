package application

// Params holds the validated parameters of one operation call. Integer
// fields are stored as int, number fields as float64, and declared defaults
// are already applied.
type Params map[string]interface{}

// Has reports whether the parameter was supplied or defaulted.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// String returns a string parameter, or "" when absent.
func (p Params) String(name string) string {
	value, _ := p[name].(string)
	return value
}

// StringPtr returns a pointer to a string parameter, or nil when absent.
func (p Params) StringPtr(name string) *string {
	value, ok := p[name].(string)
	if !ok {
		return nil
	}
	return &value
}

// Int returns an integer parameter, or 0 when absent.
func (p Params) Int(name string) int {
	switch v := p[name].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Bool returns a boolean parameter, or false when absent.
func (p Params) Bool(name string) bool {
	value, _ := p[name].(bool)
	return value
}
