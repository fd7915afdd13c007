package shared

const (
	UserID   = "user_id"
	UserRole = "user_role"
	Username = "username"

	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"

	BookTypeStorybook   = "storybook"
	BookTypeEducational = "educational"

	AnswerTypeText           = "text"
	AnswerTypeMultipleChoice = "multiple_choice"

	AwardMethodAutoOnComplete = "auto_on_book_complete"
	AwardMethodManual         = "manual"
)

// IsKnownRole reports whether role is one of the three recognized roles.
func IsKnownRole(role string) bool {
	return role == RoleAdmin || role == RoleTeacher || role == RoleStudent
}

// IsStaffRole reports whether role may manage content and award badges manually.
func IsStaffRole(role string) bool {
	return role == RoleAdmin || role == RoleTeacher
}
