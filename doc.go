// Package grouplog is a chat bot that lets LINE group members keep
// date-stamped records.
//
// The bot is driven entirely by webhooks. Each group has a durable flow state
// (idle, menu, awaiting content) that is loaded for every event, so any replica
// can serve any request:
//
//	紀錄           -> menu (新增紀錄 / 查詢紀錄 / 退出)
//	新增紀錄 + date -> awaiting content
//	text           -> record saved, back to idle
//
// The packages are laid out as ports and adapters:
//
//   - pkg/domain: documents, events and abstract replies.
//   - internal/runtime: the pure state machine.
//   - pkg/dispatch: loads state, applies decisions and replies.
//   - pkg/adapters: memory, MongoDB, PostgreSQL and Redis stores, the LINE
//     Messaging API and the HTTP transport.
//
// Run it with:
//
//	grouplog serve --config grouplog.yaml
package grouplog
