package services

import "regexp"

var variableRef = regexp.MustCompile(`\$\{([^}]*)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// Expand replaces $NAME and ${NAME} references with values from env.
// References without a value are left untouched.
func Expand(s string, env map[string]string) string {
	if s == "" {
		return s
	}
	return variableRef.ReplaceAllStringFunc(s, func(ref string) string {
		m := variableRef.FindStringSubmatch(ref)
		name := m[1]
		if name == "" {
			name = m[2]
		}
		if v, ok := env[name]; ok {
			return v
		}
		return ref
	})
}
