/*
Package domain contains the core domain models of the group record bot.

It defines the persisted documents (GroupInfo, EventLog, CalendarRecord), the inbound
chat events and the abstract replies produced by the state machine. This package is kept
pure and free of external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - EventLog: The persisted flow state of one group. It is the state machine's only memory.
  - Event: A tagged variant of the platform events the bot reacts to (Join, Leave, Message, Postback).
  - Reply: An abstract outbound message (Text, Menu, Confirm) rendered by the messaging adapter.
*/
package domain
