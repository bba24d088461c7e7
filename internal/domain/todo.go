package domain

import "time"

// Todo maps to the todos table created by the embedded migrations.
// The schema is owned by the migrations, not by GORM.
type Todo struct {
	ID        int64  `gorm:"primaryKey"`
	Title     string `gorm:"not null"`
	Notes     string `gorm:"not null;default:''"`
	Assigned  string `gorm:"not null;default:''"`
	Completed bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Todo) TableName() string {
	return "todos"
}

// Pagination selects a window of todos ordered by id. A nil Offset means
// 0 and a nil Limit means no limit.
type Pagination struct {
	Offset *int `json:"offset,omitempty" validate:"omitempty,min=0"`
	Limit  *int `json:"limit,omitempty" validate:"omitempty,min=0"`
}

func NewPagination(offset, limit *int) Pagination {
	return Pagination{Offset: offset, Limit: limit}
}

// OffsetOrDefault returns the offset, or 0 when unset.
func (p Pagination) OffsetOrDefault() int {
	if p.Offset == nil {
		return 0
	}
	return *p.Offset
}

// LimitOrDefault returns the limit, or -1 (no limit) when unset.
func (p Pagination) LimitOrDefault() int {
	if p.Limit == nil {
		return -1
	}
	return *p.Limit
}
