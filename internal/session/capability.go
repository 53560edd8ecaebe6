package session

import greenhouse "greenhouse_console"

// Capability is a named permission rather than a role string, so call
// sites never compare roles directly.
type Capability string

const (
	// CapOperate covers every authenticated operator surface.
	CapOperate Capability = "operate"
	// CapAdmin covers the administrative panel.
	CapAdmin Capability = "admin"
	// CapHeadAdmin covers promote/demote and password approvals.
	CapHeadAdmin Capability = "head_admin"
)

// CanAccess reports whether the identity holds the capability. A nil or
// banned identity holds nothing.
func CanAccess(u *greenhouse.User, c Capability) bool {
	if u == nil || u.Status == greenhouse.StatusBanned {
		return false
	}
	switch c {
	case CapOperate:
		return true
	case CapAdmin:
		return u.Role == greenhouse.RoleAdmin || u.Role == greenhouse.RoleHeadAdmin
	case CapHeadAdmin:
		return u.Role == greenhouse.RoleHeadAdmin
	}
	return false
}
