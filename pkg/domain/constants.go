package domain

// Keyword is the only text that opens (or restarts) the record flow.
const Keyword = "紀錄"

// Postback data values carried by the menu and confirm actions.
const (
	PostbackSelect = "select"
	PostbackGet    = "get"
	PostbackExit   = "exit"
	PostbackNext   = "next"
)

// Collection names shared by the document and table backed stores.
const (
	CollectionGroupInfo = "GroupInfo"
	CollectionEventLog  = "EventLog"
	CollectionCalendar  = "Calendar"
)
