// Package store publishes the status of a crawl run so that other processes
// can follow it while it is in progress.
//
// A run moves from "running" to either "completed" or "failed". The status
// is written to Redis when an address is configured and dropped otherwise.
package store
