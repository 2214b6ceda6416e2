// Package line connects the bot to the LINE Messaging API.
//
// Parser verifies and decodes webhook requests into domain events. Emitter
// translates abstract replies into LINE messages and sends them.
package line
