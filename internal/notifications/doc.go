// Package notifications delivers push alerts about pipeline runs via
// ntfy. When no topic is configured every notification is a no-op, so
// callers never need to guard their calls.
package notifications
