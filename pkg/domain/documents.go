package domain

// GroupInfo is created when the bot joins a group and removed when it leaves.
type GroupInfo struct {
	GroupID   string   `json:"group_id" bson:"group_id"`
	Active    bool     `json:"active" bson:"active"`
	CreatedAt int64    `json:"created_at" bson:"created_at"`
	Members   []string `json:"members" bson:"members"`
}

// NewGroupInfo creates an active group with no known members.
func NewGroupInfo(groupID string, timestamp int64) *GroupInfo {
	return &GroupInfo{
		GroupID:   groupID,
		Active:    true,
		CreatedAt: timestamp,
		Members:   []string{},
	}
}

// CalendarRecord is one dated text entry. Records are append-only.
type CalendarRecord struct {
	GroupID    string `json:"group_id" bson:"group_id"`
	UserID     string `json:"user_id" bson:"user_id"`
	Timestamp  int64  `json:"timestamp" bson:"timestamp"`
	RecordDate string `json:"record_date" bson:"record_date"`
	Content    string `json:"content" bson:"content"`
}
