// model/models.go
package model

// Models lists every table the platform owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&User{},

		// Content
		&Book{},
		&Page{},
		&Question{},

		// Reading state
		&Progress{},
		&StoryCheckpoint{},
		&ReadingSession{},
		&QuizAttempt{},

		// Badges
		&Badge{},
		&BookBadge{},
		&EarnedBadge{},
	}
}
