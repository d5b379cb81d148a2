package auth

import "strings"

// AdminAllowList is the fixed set of administrator emails. It is built once
// at startup and has no mutators, so concurrent reads need no locking.
type AdminAllowList struct {
	emails map[string]struct{}
}

// NewAdminAllowList normalizes and copies emails. Blank entries are ignored.
func NewAdminAllowList(emails []string) AdminAllowList {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return AdminAllowList{emails: set}
}

// IsAdmin reports whether email is on the list. The zero value and blank
// emails always report false.
func (a AdminAllowList) IsAdmin(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	_, ok := a.emails[email]
	return ok
}

// Len returns the number of administrators.
func (a AdminAllowList) Len() int {
	return len(a.emails)
}
