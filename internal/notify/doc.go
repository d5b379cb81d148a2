// Package notify turns deadline events into user notifications.
//
// Inbox is registered as an event handler. It stores one notification per
// event for the task's assignee and hands the stored notification to a
// Publisher. Hub is the Publisher used by the server: it keeps the open
// websocket connections of each user and writes notifications to them.
package notify
