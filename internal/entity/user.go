package entity

// CoinsPerLevel is the amount of lifetime earned coins needed to reach the
// next level.
const CoinsPerLevel = 100

type User struct {
	Base
	Username string `gorm:"unique"`
	IsAdmin  bool
	IsOwner  bool
	IsBanned bool

	// Earned is the total of positive balance changes, it never decreases.
	Earned int64
}

func (u User) Level() int64 {
	return 1 + u.Earned/CoinsPerLevel
}

// CanAdministrate reports whether the user may perform admin actions.
func (u User) CanAdministrate() bool {
	return u.IsAdmin || u.IsOwner
}
