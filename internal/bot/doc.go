// Package bot implements the administrative chat commands for subscriptions.
//
// Commands arrive already parsed and authorized. Each is looked up in a static name-to-handler
// table and answered with text ready for the platform to send. The subchannel command also
// posts the reaction legend and designates it as the subscription message.
package bot
