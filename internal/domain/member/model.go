package member

import (
	"errors"
	"sort"
	"strings"
	"unicode/utf8"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength       = 100
	MaxDepartmentLength = 100
	MaxMobileLength     = 20
)

// Role constants
const (
	RoleTrainee       = "Trainee"
	RoleMember        = "Member"
	RoleAdvisor       = "Advisor"
	RoleVicePresident = "Vice President"
	RolePresident     = "President"
	RoleAdministrator = "Administrator"
)

// Academic year constants
const (
	YearI   = "I"
	YearII  = "II"
	YearIII = "III"
	YearIV  = "IV"
)

// YearOther groups members whose academic year is unset.
const YearOther = "Other"

// ValidRoles contains all valid role values, most junior first.
var ValidRoles = []string{RoleTrainee, RoleMember, RoleAdvisor, RoleVicePresident, RolePresident, RoleAdministrator}

// ValidYears contains all valid academic years in display order.
var ValidYears = []string{YearI, YearII, YearIII, YearIV}

// AdminRoles are the roles allowed into the admin dashboard.
var AdminRoles = []string{RolePresident, RoleVicePresident, RoleAdministrator}

// Domain errors
var (
	ErrNotFound     = errors.New("member not found")
	ErrEmptyName    = errors.New("member name cannot be empty")
	ErrInvalidEmail = errors.New("member email must be valid")
	ErrInvalidRole  = errors.New("role must be one of: Trainee, Member, Advisor, Vice President, President, Administrator")
	ErrInvalidYear  = errors.New("academic year must be one of: I, II, III, IV")
	ErrInvalidPhone = errors.New("mobile may only contain digits, spaces, '+' and '-'")
	ErrDuplicate    = errors.New("a member with this email already exists")

	ErrNameTooLong       = errors.New("member name cannot exceed 100 characters")
	ErrDepartmentTooLong = errors.New("department cannot exceed 100 characters")
	ErrMobileTooLong     = errors.New("mobile cannot exceed 20 characters")
)

// Member is a person on the organization's roster.
type Member struct {
	ID           string
	Name         string
	Department   string
	Role         string
	Email        string
	Mobile       string
	AcademicYear string
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Role and AcademicYear are drawn from their enumerations
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(m.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if utf8.RuneCountInString(m.Department) > MaxDepartmentLength {
		return ErrDepartmentTooLong
	}
	if !strings.Contains(m.Email, "@") {
		return ErrInvalidEmail
	}
	if !IsValidRole(m.Role) {
		return ErrInvalidRole
	}
	if !IsValidYear(m.AcademicYear) {
		return ErrInvalidYear
	}
	if utf8.RuneCountInString(m.Mobile) > MaxMobileLength {
		return ErrMobileTooLong
	}
	for _, r := range m.Mobile {
		if (r < '0' || r > '9') && r != '+' && r != ' ' && r != '-' {
			return ErrInvalidPhone
		}
	}
	return nil
}

// IsAdmin reports whether the member may use the admin dashboard.
func (m *Member) IsAdmin() bool {
	return IsAdminRole(m.Role)
}

// Matches reports whether the member matches a roster search query.
// Text fields match case-insensitively; mobile matches as a plain substring.
// An empty query matches every member.
func (m *Member) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(m.Name), q) ||
		strings.Contains(strings.ToLower(m.Department), q) ||
		strings.Contains(strings.ToLower(m.Role), q) ||
		strings.Contains(strings.ToLower(m.Email), q) ||
		strings.Contains(m.Mobile, query)
}

// IsValidRole reports whether role is a known roster role.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsValidYear reports whether year is a known academic year.
func IsValidYear(year string) bool {
	for _, y := range ValidYears {
		if y == year {
			return true
		}
	}
	return false
}

// IsAdminRole reports whether role grants admin dashboard access.
func IsAdminRole(role string) bool {
	for _, r := range AdminRoles {
		if r == role {
			return true
		}
	}
	return false
}

// YearRank orders academic years senior first: IV=1, III=2, II=3, I=4, anything else last.
func YearRank(year string) int {
	switch year {
	case YearIV:
		return 1
	case YearIII:
		return 2
	case YearII:
		return 3
	case YearI:
		return 4
	}
	return 5
}

// SortRoster sorts members by academic year rank, then by name.
// POST: members is sorted in place; equal names keep a stable order
func SortRoster(members []Member) {
	sort.SliceStable(members, func(i, j int) bool {
		ri, rj := YearRank(members[i].AcademicYear), YearRank(members[j].AcademicYear)
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(members[i].Name) < strings.ToLower(members[j].Name)
	})
}
