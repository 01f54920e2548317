// Package events defines the optimizer progress events emitted on the event bus.
//
// Available event types:
//   - TransferApplied: a candidate passed validation and was committed
//   - TransferRejected: a candidate was written, failed validation and was reverted
//   - RunFinished: the greedy loop stopped
package events
