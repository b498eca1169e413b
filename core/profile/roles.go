package profile

// Kind is a profile kind an identity may hold.
type Kind uint8

const (
	KindStudent Kind = 1 << iota
	KindTeacher
	KindDirector
)

// Kinds is the set of profile kinds held by one identity.
type Kinds uint8

func NewKinds(kinds ...Kind) Kinds {
	var set Kinds
	for _, k := range kinds {
		set |= Kinds(k)
	}
	return set
}

func (ks Kinds) Has(k Kind) bool {
	return ks&Kinds(k) != 0
}

func (ks Kinds) IsEmpty() bool {
	return ks == 0
}

// Role is the view an identity is served.
type Role string

const (
	RoleGuest    Role = "guest"
	RoleStudent  Role = "student"
	RoleTeacher  Role = "teacher"
	RoleDirector Role = "director"
)

// rolePriorities lists roles from highest to lowest priority.
var rolePriorities = []struct {
	kind Kind
	role Role
}{
	{KindDirector, RoleDirector},
	{KindTeacher, RoleTeacher},
	{KindStudent, RoleStudent},
}

// Resolve picks the highest priority role: Director, then Teacher, then Student.
// An identity without any profile is a guest.
func Resolve(kinds Kinds) Role {
	for _, rp := range rolePriorities {
		if kinds.Has(rp.kind) {
			return rp.role
		}
	}
	return RoleGuest
}
