package types

import (
	"time"
)

type NeedStatus string

const (
	NeedStatusPublished NeedStatus = "PUBLISHED"
	NeedStatusCancelled NeedStatus = "CANCELLED"
)

// Service categories are a fixed classification set plus "其他".
const (
	CategoryPlumbing      = "管道维修"
	CategoryElderCare     = "助老服务"
	CategoryCleaning      = "保洁服务"
	CategoryMedicalVisit  = "就诊服务"
	CategoryMealService   = "营养餐服务"
	CategoryTransport     = "定期接送服务"
	CategoryOther         = "其他"
)

var ServiceCategories = []string{
	CategoryPlumbing,
	CategoryElderCare,
	CategoryCleaning,
	CategoryMedicalVisit,
	CategoryMealService,
	CategoryTransport,
	CategoryOther,
}

func ValidServiceCategory(category string) bool {
	for _, c := range ServiceCategories {
		if c == category {
			return true
		}
	}
	return false
}

type Need struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	RegionID    string     `db:"region_id" json:"region_id"`
	Category    string     `db:"category" json:"category"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Images      []string   `db:"images" json:"images"`
	Videos      []string   `db:"videos" json:"videos"`
	Status      NeedStatus `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`

	// Derived columns, populated on reads and never written back.
	ResponseCount  int     `db:"response_count" json:"response_count"`
	AcceptedCount  int     `db:"accepted_count" json:"accepted_count"`
	OwnerName      *string `db:"owner_name" json:"owner_name"`
	RegionFullName *string `db:"region_full_name" json:"region_full_name"`
}

// NeedDerivedColumns are selected via joins/subqueries and must be stripped
// from insert/update maps.
var NeedDerivedColumns = []string{"response_count", "accepted_count", "owner_name", "region_full_name"}

// CanEdit reports the data invariant for structural edits: a need is
// editable only while published and untouched by any response. This holds
// for administrators too.
func (n *Need) CanEdit() bool {
	return n.Status == NeedStatusPublished && n.ResponseCount == 0
}

func (n *Need) CanDelete() bool {
	return n.CanEdit()
}
