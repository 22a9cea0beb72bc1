// Package task manages background job queuing, processing, and lifecycle.
// It provides mechanisms for asynchronous execution of long-running
// operations like generating itineraries for plans, ensuring they don't
// block HTTP request handling. The plan record itself is the durable state:
// after a restart, pending plans are rediscovered from storage and requeued.
package task
