// Package notifier sends the digest of newly found events.
//
// EmailNotifier delivers it over SMTP. DryRunNotifier prints the same digest
// to a writer so a run can be checked without sending mail.
package notifier
