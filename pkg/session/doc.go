/*
Package session serializes the handling of events that belong to the same group.

The bot keeps no session data in memory: a group's conversation lives entirely in its
EventLog document. What this package provides is mutual exclusion around the
read-decide-write sequence, combining process-local mutexes with an optional
distributed lock so that several replicas can share one store.
*/
package session
