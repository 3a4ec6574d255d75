// Package reaction turns emoji reactions on the designated subscription message into
// subscription changes.
//
// A Binding assigns one keycap glyph to each catalog category in catalog order. The Translator
// remembers which message currently carries that legend and applies reaction-add and
// reaction-remove events on it to the registry. Events anywhere else, events from the bot
// itself, and glyphs outside the binding are ignored.
package reaction
