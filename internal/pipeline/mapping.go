package pipeline

import "github.com/chronicle-ai/chronicle/pkg/query"

var jobProjection = query.
	NewProjectionMap("public", "jobs", "j").
	Project("id", "ID").
	Project("owner_id", "OwnerID").
	Project("state", "State").
	Project("history", "History").
	Project("payload", "Payload").
	Project("failure", "Failure").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var jobDefaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// JobFilters contains optional filtering criteria for job listings.
// Nil fields are ignored; both use exact matching.
type JobFilters struct {
	State   *string `json:"state,omitempty"`
	OwnerID *string `json:"owner_id,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f JobFilters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("State", f.State).
		WhereEquals("OwnerID", f.OwnerID)
}
