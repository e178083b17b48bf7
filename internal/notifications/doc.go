// Package notifications delivers run events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and degrades to a no-op when notifications are disabled. Events
// cover run completion, fatal run failures, and a connectivity test so the CLI
// emits consistent messages without duplicating HTTP glue.
package notifications
