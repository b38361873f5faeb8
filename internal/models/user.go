package models

type UserType string

const (
	UserTypeParent UserType = "parent"
	UserTypeTutor  UserType = "tutor"
	UserTypeAdmin  UserType = "admin"
)

// RaterType is the role a rating author held in the match. Only parents and
// tutors rate each other.
type RaterType string

const (
	RaterTypeParent RaterType = "parent"
	RaterTypeTutor  RaterType = "tutor"
)

func (t RaterType) IsValid() bool {
	return t == RaterTypeParent || t == RaterTypeTutor
}

// Opposite returns the role on the other side of a match.
func (t RaterType) Opposite() RaterType {
	if t == RaterTypeParent {
		return RaterTypeTutor
	}
	return RaterTypeParent
}

func ParseRaterType(s string) (RaterType, bool) {
	t := RaterType(s)
	return t, t.IsValid()
}
