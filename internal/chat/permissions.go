package chat

import (
	"slices"
	"time"
)

// Permission names checked by message actions.
const (
	PermCreateDirect        = "create-d"
	PermEditMessage         = "edit-message"
	PermDeleteMessage       = "delete-message"
	PermDeleteOwnMessage    = "delete-own-message"
	PermForceDeleteMessage  = "force-delete-message"
	PermManageOmnichannel   = "manage-livechat-managers"
	PermViewEngagementStats = "view-engagement-dashboard"
)

// rolePermissions is the static role table; permissions are not managed
// at runtime.
var rolePermissions = map[string][]string{
	"admin": {
		PermCreateDirect, PermEditMessage, PermDeleteMessage, PermDeleteOwnMessage,
		PermForceDeleteMessage, PermManageOmnichannel, PermViewEngagementStats,
	},
	"moderator": {PermCreateDirect, PermEditMessage, PermDeleteMessage, PermDeleteOwnMessage},
	"user":      {PermCreateDirect, PermDeleteOwnMessage},
	"guest":     {},
}

// HasPermission reports whether any of the user's roles grants perm.
func HasPermission(u *User, perm string) bool {
	if u == nil {
		return false
	}
	for _, role := range u.Roles {
		if slices.Contains(rolePermissions[role], perm) {
			return true
		}
	}
	return false
}

// CanDeleteMessage applies the deletion rules: force-delete always wins,
// otherwise deleting must be allowed (or the user holds delete-message) and
// the block window, when set, must not have elapsed.
func CanDeleteMessage(u *User, m *Message, s Settings, now time.Time) bool {
	if u == nil || m == nil {
		return false
	}
	if HasPermission(u, PermForceDeleteMessage) {
		return true
	}

	deleteAny := HasPermission(u, PermDeleteMessage)
	deleteOwn := m.User.ID == u.ID && HasPermission(u, PermDeleteOwnMessage)
	if !deleteAny && !(s.Bool(SettingAllowDeleting) && deleteOwn) {
		return false
	}

	if block := s.Int(SettingBlockDeleteMinutes); block > 0 && !m.Timestamp.IsZero() {
		return now.Sub(m.Timestamp) < time.Duration(block)*time.Minute
	}
	return true
}

// CanEditMessage mirrors CanDeleteMessage for edits.
func CanEditMessage(u *User, m *Message, s Settings, now time.Time) bool {
	if u == nil || m == nil {
		return false
	}
	editOwn := m.User.ID == u.ID
	if !HasPermission(u, PermEditMessage) && !(s.Bool(SettingAllowEditing) && editOwn) {
		return false
	}

	if block := s.Int(SettingBlockEditMinutes); block > 0 {
		if m.Timestamp.IsZero() {
			return false
		}
		return now.Sub(m.Timestamp) < time.Duration(block)*time.Minute
	}
	return true
}
