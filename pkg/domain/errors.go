package domain

import "errors"

// ErrFlowNotFound is returned when a group has no EventLog document.
var ErrFlowNotFound = errors.New("flow state not found")

// ErrGroupNotFound is returned when a group has no GroupInfo document.
var ErrGroupNotFound = errors.New("group not found")

// ErrRecordNotFound is returned when a group has no Calendar record.
var ErrRecordNotFound = errors.New("record not found")
