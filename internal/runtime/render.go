package runtime

import (
	"fmt"
	"unicode/utf8"

	"github.com/aretw0/grouplog/pkg/domain"
)

// Reply texts shown to group members.
const (
	ReplyGreeting       = "你好我是紀錄機器人"
	ReplyFarewell       = "掰掰"
	ReplyMenu           = "請選擇以下功能"
	ReplyRestart        = "請重新開始記錄"
	ReplyEnterContent   = "請輸入內容"
	ReplyRecorded       = "紀錄完成"
	ReplyDateMissing    = "未正確選擇時間，請重新開始記錄"
	ReplyWrongSelection = "未正確選擇功能，請重新開始記錄"
	ReplyNoRecords      = "無紀錄"
	ReplyExited         = "退出紀錄"
)

// Option labels.
const (
	LabelCreate = "新增紀錄"
	LabelQuery  = "查詢紀錄"
	LabelExit   = "退出"
	LabelNext   = "查看下一筆"
)

// ConfirmTextLimit is the longest text LINE accepts in a confirm template.
const ConfirmTextLimit = 240

func menuReply() domain.MenuReply {
	return domain.MenuReply{
		Text: ReplyMenu,
		Options: []domain.Option{
			{Kind: domain.OptionDatePicker, Label: LabelCreate, Data: domain.PostbackSelect},
			{Kind: domain.OptionPostback, Label: LabelQuery, Data: domain.PostbackGet},
			{Kind: domain.OptionPostback, Label: LabelExit, Data: domain.PostbackExit},
		},
	}
}

func dateChosen(date string) string {
	return fmt.Sprintf("已選擇日期: %s", date)
}

// RecordReply builds the answer to a "get" postback. rec is nil when the group has no records.
func RecordReply(rec *domain.CalendarRecord) domain.Reply {
	if rec == nil {
		return domain.Text(ReplyNoRecords)
	}
	return domain.ConfirmReply{
		AltText: fmt.Sprintf("%s 的紀錄", rec.RecordDate),
		Text:    truncate(fmt.Sprintf("日期: %s\n內容: %s", rec.RecordDate, rec.Content), ConfirmTextLimit),
		Actions: []domain.Option{
			{Kind: domain.OptionPostback, Label: LabelNext, Data: domain.PostbackNext},
			{Kind: domain.OptionPostback, Label: LabelExit, Data: domain.PostbackExit},
		},
	}
}

// truncate shortens s to at most limit characters, marking the cut with an ellipsis.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
