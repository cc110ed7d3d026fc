package models

import (
	"time"

	"github.com/shiporsink/change/internal/services/insights"
	"gorm.io/gorm"
)

// StakeholderGroup is a team or department that can be scored as a unit.
type StakeholderGroup struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      string         `gorm:"size:64;index;not null" json:"user_id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Description string         `gorm:"size:1000" json:"description"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (StakeholderGroup) TableName() string { return "stakeholder_groups" }

// GlobalStakeholder is a person in the user's organisation directory,
// shared by all of the user's projects. At most one is flagged IsMe.
type GlobalStakeholder struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	UserID      string            `gorm:"size:64;index;not null" json:"user_id"`
	Name        string            `gorm:"size:200;not null" json:"name"`
	Role        string            `gorm:"size:200" json:"role"`
	Department  string            `gorm:"size:200" json:"department"`
	Email       string            `gorm:"size:255" json:"email"`
	GroupID     *uint             `gorm:"index" json:"group_id"`
	Group       *StakeholderGroup `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	IsMe        bool              `gorm:"default:false" json:"is_me"`
	ReportsToID *uint             `gorm:"index" json:"reports_to_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	DeletedAt   gorm.DeletedAt    `gorm:"index" json:"-"`
}

func (GlobalStakeholder) TableName() string { return "global_stakeholders" }

// ADKARFields are the five per-stage scores shared by stakeholder and group links.
type ADKARFields struct {
	Awareness     int `gorm:"default:0" json:"awareness"`
	Desire        int `gorm:"default:0" json:"desire"`
	Knowledge     int `gorm:"default:0" json:"knowledge"`
	Ability       int `gorm:"default:0" json:"ability"`
	Reinforcement int `gorm:"default:0" json:"reinforcement"`
}

func (f ADKARFields) Scores() insights.ADKARScores {
	return insights.ADKARScores{
		Awareness:     f.Awareness,
		Desire:        f.Desire,
		Knowledge:     f.Knowledge,
		Ability:       f.Ability,
		Reinforcement: f.Reinforcement,
	}
}

// ProjectStakeholder links a global stakeholder to a project with the
// project-specific scores.
type ProjectStakeholder struct {
	ID                  uint               `gorm:"primaryKey" json:"id"`
	ProjectID           uint               `gorm:"uniqueIndex:idx_project_stakeholder;not null" json:"project_id"`
	GlobalStakeholderID uint               `gorm:"uniqueIndex:idx_project_stakeholder;not null" json:"global_stakeholder_id"`
	Stakeholder         *GlobalStakeholder `gorm:"foreignKey:GlobalStakeholderID" json:"stakeholder,omitempty"`
	ADKARFields         `gorm:"embedded"`
	EngagementScore     int            `gorm:"default:0" json:"engagement_score"`
	PerformanceScore    int            `gorm:"default:0" json:"performance_score"`
	StakeholderType     string         `gorm:"size:20" json:"stakeholder_type"` // champion, early_adopter, neutral, skeptic, resistant
	Notes               string         `gorm:"type:text" json:"notes"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ProjectStakeholder) TableName() string { return "project_stakeholders" }

// ScoreHistory is an append-only engagement/performance snapshot.
type ScoreHistory struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	ProjectStakeholderID uint      `gorm:"index;not null" json:"project_stakeholder_id"`
	EngagementScore      int       `json:"engagement_score"`
	PerformanceScore     int       `json:"performance_score"`
	RecordedAt           time.Time `gorm:"index" json:"recorded_at"`
}

func (ScoreHistory) TableName() string { return "score_histories" }

// Group sentiments.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// ProjectGroup links a stakeholder group to a project with group-level scores.
type ProjectGroup struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	ProjectID   uint              `gorm:"uniqueIndex:idx_project_group;not null" json:"project_id"`
	GroupID     uint              `gorm:"uniqueIndex:idx_project_group;not null" json:"group_id"`
	Group       *StakeholderGroup `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	ADKARFields `gorm:"embedded"`
	Sentiment   string         `gorm:"size:20;default:neutral" json:"sentiment"`
	Notes       string         `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ProjectGroup) TableName() string { return "project_groups" }
