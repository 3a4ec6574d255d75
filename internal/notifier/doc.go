// Package notifier delivers bot output to the chat platform.
//
// A Notifier posts messages and adds reactions. StreamNotifier writes each action as a JSON
// line for a platform adapter to execute; DryRunNotifier prints what would be sent.
package notifier
