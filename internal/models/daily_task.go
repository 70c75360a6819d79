package models

import "time"

// Daily task types.
const (
	TaskPost    = "post"
	TaskLike    = "like"
	TaskComment = "comment"
	TaskCheckin = "checkin"
)

// DailyTaskExp is the experience granted the first time a task is completed each day.
const DailyTaskExp = 10

// DailyTask records which tasks a user has completed on a given UTC date.
type DailyTask struct {
	ID               uint      `gorm:"primaryKey" json:"-"`
	UserID           uint      `gorm:"not null;uniqueIndex:idx_daily_tasks_user_date,priority:1" json:"-"`
	TaskDate         string    `gorm:"size:10;not null;uniqueIndex:idx_daily_tasks_user_date,priority:2" json:"date"`
	PostCompleted    bool      `gorm:"not null;default:false" json:"post"`
	LikeCompleted    bool      `gorm:"not null;default:false" json:"like"`
	CommentCompleted bool      `gorm:"not null;default:false" json:"comment"`
	CheckinCompleted bool      `gorm:"not null;default:false" json:"checkin"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}

// ValidTask reports whether taskType names a known daily task.
func ValidTask(taskType string) bool {
	switch taskType {
	case TaskPost, TaskLike, TaskComment, TaskCheckin:
		return true
	}
	return false
}

// Column returns the flag column backing taskType.
func (d *DailyTask) Column(taskType string) string {
	return taskType + "_completed"
}

// Completed reports whether taskType is already done today.
func (d *DailyTask) Completed(taskType string) bool {
	switch taskType {
	case TaskPost:
		return d.PostCompleted
	case TaskLike:
		return d.LikeCompleted
	case TaskComment:
		return d.CommentCompleted
	case TaskCheckin:
		return d.CheckinCompleted
	}
	return false
}

// MarkCompleted sets the flag for taskType on the in-memory row.
func (d *DailyTask) MarkCompleted(taskType string) {
	switch taskType {
	case TaskPost:
		d.PostCompleted = true
	case TaskLike:
		d.LikeCompleted = true
	case TaskComment:
		d.CommentCompleted = true
	case TaskCheckin:
		d.CheckinCompleted = true
	}
}

// TaskDateFor formats t as the UTC calendar day key used by daily tasks.
func TaskDateFor(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
