// Package dispatch applies engine decisions to the stores and sends replies.
//
// Every event is handled from durable state alone: the EventLog is loaded fresh,
// the engine decides, the decision is persisted and only then is the reply sent.
package dispatch
