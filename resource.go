package optiq

// Resource describes one logical resource the client can mutate.
//
// Identifier disambiguates duplicated Name entries: two resources may share
// a backend name ("posts") while keeping separate meta and cache keyspaces
// ("posts", "featured-posts").
type Resource struct {
	Name             string
	Identifier       string
	Meta             Meta
	DataProviderName string

	// Audit lists the audit-log actions permitted for this resource.
	// Empty means all actions; a non-empty list silently skips anything
	// not on it.
	Audit []string
}

// Key returns the segment used for this resource in query keys:
// Identifier when set, else Name. Duplicated names with distinct
// identifiers therefore occupy disjoint keyspaces.
func (r Resource) Key() string {
	return coalesce(r.Identifier, r.Name)
}

func (r Resource) auditAllowed(action string) bool {
	if len(r.Audit) == 0 {
		return true
	}
	for _, a := range r.Audit {
		if a == action {
			return true
		}
	}
	return false
}

// ResolveResource maps a name or identifier to its configuration.
// Exact Identifier matches win; otherwise the first resource whose Name
// equals the argument is returned. A *ResolutionError is returned when
// nothing matches.
func ResolveResource(resources []Resource, nameOrIdentifier string) (Resource, error) {
	for _, r := range resources {
		if r.Identifier != "" && r.Identifier == nameOrIdentifier {
			return r, nil
		}
	}
	for _, r := range resources {
		if r.Name == nameOrIdentifier {
			return r, nil
		}
	}
	return Resource{}, &ResolutionError{Resource: nameOrIdentifier}
}
