// Package alerter sends a Telegram message when a monitored function fails and
// then hands the failure back to the caller unchanged.
//
// An Alerter owns a bot token, a default chat and an optional kind filter:
//
//	a, err := alerter.FromEnvironment()
//	if err != nil {
//		return err
//	}
//	sync := a.Wrap(syncInventory)
//	if err := sync(); err != nil {
//		// same error value syncInventory returned
//	}
//
// # Failures
//
// Both returned errors and panics are observed. Returned errors come back to
// the caller as the identical value. Panics are re-panicked with the original
// value after the alert is sent.
//
// # Filtering
//
// Every failure is classified by kind: the AlertKind() of a tagged error, the
// bare type name of the error (PathError, ExitError, errorString, ...), or
// "panic" for non-error panic values. A non-empty whitelist suppresses alerts
// for its kinds. A non-empty blacklist restricts alerts to its kinds. The
// whitelist always wins.
//
// # Delivery
//
// Each alert is exactly one synchronous sendMessage POST. There is no retry
// and no queue. Callers that need bounded latency configure it on the
// http.Client passed through WithHTTPClient.
package alerter
