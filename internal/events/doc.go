// Package events connects the deadline scanner to the components that act on
// its findings.
//
// The scanner emits a DeadlineEvent per due task through an EventEmitter.
// Handlers registered with the emitter decide what to do with it. The
// notification inbox is the production handler: it stores the event and
// hands the stored notification to a publisher such as the websocket hub.
package events
