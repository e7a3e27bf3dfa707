// Package registry provides the action and compound registries consulted by
// the resolution engine.
//
// Registry data is maintained outside this repository as CUE files:
//
//	package registry
//
//	schema_version: "1.0.0"
//
//	action: track_package: {
//		mode:     "mail"
//		kind:     "goto"
//		requires: ["trackingNumber", "carrier"]
//		ui:       "track_package"
//		priority: 10
//	}
//
//	compound: order_followup: {
//		steps: ["view_order", "write_review"]
//		end_behavior: {type: "show_message", value: "Thanks!"}
//	}
//
// A Snapshot is an immutable, compiled view of one registry directory and is
// safe for concurrent readers. Reloadable swaps snapshots atomically so that
// configuration can change between resolutions but never during one: the
// engine pins a snapshot (see Pinner) at the start of every resolution.
package registry
