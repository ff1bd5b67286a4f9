package types

type CreateNeedInput struct {
	RegionID    string   `json:"region_id" form:"region_id"`
	Category    string   `json:"category" form:"category"`
	Title       string   `json:"title" form:"title"`
	Description string   `json:"description" form:"description"`
	Images      []string `json:"images" form:"images"`
	Videos      []string `json:"videos" form:"videos"`
}

// UpdateNeedInput carries partial structural edits; nil fields are left
// untouched.
type UpdateNeedInput struct {
	RegionID    *string   `json:"region_id" form:"region_id"`
	Category    *string   `json:"category" form:"category"`
	Title       *string   `json:"title" form:"title"`
	Description *string   `json:"description" form:"description"`
	Images      *[]string `json:"images" form:"images"`
	Videos      *[]string `json:"videos" form:"videos"`
}

type CreateResponseInput struct {
	NeedID      string   `json:"need_id" form:"need_id"`
	Description string   `json:"description" form:"description"`
	Images      []string `json:"images" form:"images"`
	Videos      []string `json:"videos" form:"videos"`
}

type UpdateResponseInput struct {
	Description *string   `json:"description" form:"description"`
	Images      *[]string `json:"images" form:"images"`
	Videos      *[]string `json:"videos" form:"videos"`
}

type RegionInput struct {
	Province string `json:"province" form:"province"`
	City     string `json:"city" form:"city"`
	Name     string `json:"name" form:"name"`
	FullName string `json:"full_name" form:"full_name"`
}

type NeedQuery struct {
	Category string `form:"category"`
	RegionID string `form:"region"`
	Status   string `form:"status"`
	Search   string `form:"search"`
	Ordering string `form:"ordering"`
	PageQuery
}

type ResponseQuery struct {
	Status   string `form:"status"`
	NeedID   string `form:"need_id"`
	UserID   string `form:"user_id"`
	Search   string `form:"search"`
	Ordering string `form:"ordering"`
	PageQuery
}

type UserQuery struct {
	Search   string `form:"search"`
	UserType string `form:"user_type"`
	Ordering string `form:"ordering"`
	PageQuery
}

type RegionQuery struct {
	Province string `form:"province"`
	City     string `form:"city"`
	Search   string `form:"search"`
	Ordering string `form:"ordering"`
	PageQuery
}

type StatsQuery struct {
	StartMonth string `form:"start_month"`
	EndMonth   string `form:"end_month"`
	RegionID   string `form:"region_id"`
	Category   string `form:"service_type"`
}
