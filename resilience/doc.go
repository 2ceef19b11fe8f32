// Package resilience provides retry with exponential backoff and a circuit
// breaker.
//
// The synchronizer retries its registry subscription with RetryFunc; the
// event publisher guards the broker with a Breaker so a broker outage fails
// fast instead of delaying every cache notification.
package resilience
