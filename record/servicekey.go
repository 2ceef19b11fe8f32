package record

import "strings"

// BuildServiceKey composes group/interface:version, omitting an empty group or version.
func BuildServiceKey(group, iface, version string) string {
	var b strings.Builder
	if group != "" {
		b.WriteString(group)
		b.WriteByte('/')
	}
	b.WriteString(iface)
	if version != "" {
		b.WriteByte(':')
		b.WriteString(version)
	}
	return b.String()
}

// ServiceInterface extracts the interface from a service key.
func ServiceInterface(key string) string {
	if i := strings.Index(key, "/"); i >= 0 {
		key = key[i+1:]
	}
	if i := strings.LastIndex(key, ":"); i >= 0 {
		key = key[:i]
	}
	return key
}

// ServiceGroup extracts the group from a service key, or "" when there is none.
func ServiceGroup(key string) string {
	if i := strings.Index(key, "/"); i >= 0 {
		return key[:i]
	}
	return ""
}

// ServiceVersion extracts the version from a service key, or "" when there is none.
func ServiceVersion(key string) string {
	if i := strings.LastIndex(key, ":"); i >= 0 {
		return key[i+1:]
	}
	return ""
}

// ParseServiceKey splits a service key into its parts.
func ParseServiceKey(key string) (group, iface, version string) {
	return ServiceGroup(key), ServiceInterface(key), ServiceVersion(key)
}

// NormalizeServiceKey rebuilds a key so that an empty group prefix ("/Foo:1.0")
// and an empty version suffix ("Foo:") compare equal to their short forms.
func NormalizeServiceKey(key string) string {
	group, iface, version := ParseServiceKey(key)
	return BuildServiceKey(group, iface, version)
}

// MatchesPattern reports whether value equals pattern or pattern is the wildcard.
func MatchesPattern(pattern, value string) bool {
	return pattern == AnyValue || pattern == value
}
