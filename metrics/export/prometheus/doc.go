// Package prometheus renders sessauth engine counters in Prometheus text
// exposition format without pulling in a client library.
package prometheus
