/*
Package ports defines the driven ports (interfaces) of the group record bot.

These interfaces decouple the dispatcher from external implementations, allowing
the same state machine to run against various storage backends and messaging clients.

# Key Interfaces

  - FlowStore: Persists the per-group EventLog (the state machine's current state).
  - GroupStore / RecordStore: Persist GroupInfo and Calendar documents.
  - Messenger: Sends replies (by reply token) and pushes (by group id).
  - DistributedLocker: Provides distributed locking for serializing events of one group.
*/
package ports
