package domain

import (
	"strings"
	"time"
)

// SupportUserID identifies the site support pseudo-user used as a message sender.
const SupportUserID int64 = -20

type User struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName    string    `gorm:"column:firstname;type:varchar(100)" json:"firstname"`
	LastName     string    `gorm:"column:lastname;type:varchar(100)" json:"lastname"`
	PasswordHash string    `gorm:"column:password_hash" json:"-"`
	IsAdmin      bool      `gorm:"column:is_admin;not null;default:false;index" json:"is_admin"`
	Suspended    bool      `gorm:"not null;default:false" json:"suspended"`
	CreatedAt    time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type Course struct {
	ID                int64  `gorm:"primaryKey" json:"id"`
	ShortName         string `gorm:"column:shortname;type:varchar(255)" json:"shortname"`
	FullName          string `gorm:"column:fullname;type:varchar(255)" json:"fullname"`
	CompletionEnabled bool   `gorm:"column:completion_enabled;not null;default:true" json:"completion_enabled"`
}

func (Course) TableName() string { return "courses" }

// CourseTeacher links users that can update a course; the lowest SortOrder is
// the teacher who signs payment messages.
type CourseTeacher struct {
	CourseID  int64 `gorm:"primaryKey;autoIncrement:false" json:"course_id"`
	UserID    int64 `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	SortOrder int   `gorm:"not null;default:0" json:"sort_order"`
}

func (CourseTeacher) TableName() string { return "course_teachers" }

type CompletionState int

const (
	CompletionIncomplete CompletionState = 0
	CompletionComplete   CompletionState = 1
)

type ActivityCompletion struct {
	ID           int64           `gorm:"primaryKey" json:"id"`
	InstanceID   int64           `gorm:"not null;uniqueIndex:ux_activity_completion,priority:1" json:"instance_id"`
	UserID       int64           `gorm:"not null;uniqueIndex:ux_activity_completion,priority:2" json:"user_id"`
	State        CompletionState `gorm:"not null;default:0" json:"state"`
	TimeModified int64           `gorm:"not null" json:"time_modified"`
}

func (ActivityCompletion) TableName() string { return "activity_completions" }
