package types

import "fmt"

type Region struct {
	ID       string `db:"id" json:"id"`
	Province string `db:"province" json:"province"`
	City     string `db:"city" json:"city"`
	Name     string `db:"name" json:"name"`
	FullName string `db:"full_name" json:"full_name"`

	// NeedCount is derived from needs referencing the region; never written.
	NeedCount int `db:"need_count" json:"need_count"`
}

// DisplayName derives the full "省-市-区" name when it was not set explicitly.
func (r *Region) DisplayName() string {
	if r.FullName != "" {
		return r.FullName
	}
	if r.Province == "" || r.City == "" {
		return r.Name
	}
	return fmt.Sprintf("%s-%s-%s", r.Province, r.City, r.Name)
}
