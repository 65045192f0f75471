package group

import "time"

// Member is a participant in a group. Members compete in the group's challenges.
type Member struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Names indexes display names by member ID.
func Names(members []Member) map[string]string {
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.DisplayName
	}
	return names
}

// IDs returns member IDs in input order.
func IDs(members []Member) []string {
	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids
}

// DisplayName returns the member's name, or the ID when unknown.
func DisplayName(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}
