// Package relay provides an optional NATS transport for the coordinator/worker
// protocol.
//
// The core protocol is in-process: workers push batches straight into the
// coordinator mailbox. The relay extends it across process boundaries without
// changing the coordinator:
//
//   - Publisher sends worker update batches over a NATS subject using
//     request/reply, so every batch is acknowledged with the merged
//     permutation count and the done flag.
//   - Receiver subscribes on the subject next to the coordinator and feeds
//     incoming batches into its mailbox.
//   - SnapshotPublisher periodically writes the coordinator's current
//     estimate to a JetStream KV bucket for external observers.
//
// The core library never imports this package; deployments that keep all
// workers in one process need no NATS infrastructure at all.
package relay
