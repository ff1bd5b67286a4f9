package types

import "time"

type ResponseStatus string

const (
	ResponseStatusPending   ResponseStatus = "PENDING"
	ResponseStatusAccepted  ResponseStatus = "ACCEPTED"
	ResponseStatusRejected  ResponseStatus = "REJECTED"
	ResponseStatusCancelled ResponseStatus = "CANCELLED"
)

func ValidResponseStatus(status ResponseStatus) bool {
	switch status {
	case ResponseStatusPending, ResponseStatusAccepted, ResponseStatusRejected, ResponseStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition out of the status exists.
func (s ResponseStatus) Terminal() bool {
	return s != ResponseStatusPending
}

type Response struct {
	ID          string         `db:"id" json:"id"`
	NeedID      string         `db:"need_id" json:"need_id"`
	UserID      string         `db:"user_id" json:"user_id"`
	Description string         `db:"description" json:"description"`
	Images      []string       `db:"images" json:"images"`
	Videos      []string       `db:"videos" json:"videos"`
	Status      ResponseStatus `db:"status" json:"status"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`

	// Derived columns, populated on reads and never written back.
	NeedTitle      *string `db:"need_title" json:"need_title"`
	NeedOwnerID    *string `db:"need_owner_id" json:"need_owner_id"`
	ResponderName  *string `db:"responder_name" json:"responder_name"`
	ResponderPhone *string `db:"responder_phone" json:"responder_phone,omitempty"`
}

var ResponseDerivedColumns = []string{"need_title", "need_owner_id", "responder_name", "responder_phone"}

func (r *Response) CanEdit() bool {
	return r.Status == ResponseStatusPending
}

func (r *Response) CanDelete() bool {
	return r.CanEdit()
}

// AcceptedMatch is the denormalized record written alongside a successful
// accept; the statistics aggregator reads it, nothing else does.
type AcceptedMatch struct {
	ID             string    `db:"id" json:"id"`
	NeedID         string    `db:"need_id" json:"need_id"`
	NeedUserID     string    `db:"need_user_id" json:"need_user_id"`
	ResponseID     string    `db:"response_id" json:"response_id"`
	ResponseUserID string    `db:"response_user_id" json:"response_user_id"`
	AcceptedDate   time.Time `db:"accepted_date" json:"accepted_date"`
	Category       string    `db:"category" json:"category"`
	RegionID       string    `db:"region_id" json:"region_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
