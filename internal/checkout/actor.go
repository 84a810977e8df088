package checkout

// Actor kinds
const (
	ActorMember = "member"
	ActorGuest  = "guest"
)

// ActorContext identifies who is checking out: an authenticated member or a
// guest with declared contact info. The coordinator never reaches into
// ambient request state; handlers resolve the actor up front.
type ActorContext struct {
	Kind     string
	UserID   uint
	FullName string
	Email    string
	Phone    string
}

// MemberActor builds the actor context for an authenticated member
func MemberActor(userID uint, fullName, email string) ActorContext {
	return ActorContext{
		Kind:     ActorMember,
		UserID:   userID,
		FullName: fullName,
		Email:    email,
	}
}

// GuestActor builds the actor context for a guest
func GuestActor(fullName, email, phone string) ActorContext {
	return ActorContext{
		Kind:     ActorGuest,
		FullName: fullName,
		Email:    email,
		Phone:    phone,
	}
}

// IsMember reports whether the actor is an authenticated member
func (a ActorContext) IsMember() bool {
	return a.Kind == ActorMember
}

// HasCompleteGuestInfo reports whether all guest contact fields are present
func (a ActorContext) HasCompleteGuestInfo() bool {
	return a.FullName != "" && a.Email != "" && a.Phone != ""
}
